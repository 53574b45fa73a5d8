package sysmon

import (
	"context"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// listContainers shells out to the docker CLI. The daemon socket is already
// mounted for the CLI on this host and one `ps --format` call does not
// justify the full engine SDK.
func listContainers() ([]ContainerStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "docker", "ps", "-a",
		"--format", "{{.Names}}|{{.Status}}").Output()
	if err != nil {
		return nil, err
	}

	var containers []ContainerStatus
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, status, _ := strings.Cut(line, "|")
		running := strings.HasPrefix(strings.ToLower(status), "up")
		display := "DOWN"
		if running {
			display = "UP"
		}
		containers = append(containers, ContainerStatus{
			Name:    strings.TrimSpace(name),
			Status:  display,
			Running: running,
		})
	}
	sort.Slice(containers, func(i, j int) bool {
		if containers[i].Running != containers[j].Running {
			return containers[i].Running
		}
		return containers[i].Name < containers[j].Name
	})
	return containers, nil
}
