package vssClient

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/SmshNGrab/joan-home-displays/vss-api/vssStructs"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	Host   string
	Port   int
	Key    string
	Secret string
	Scheme SigningScheme
	// Timeout bounds each HTTP call; defaults to 10s.
	Timeout time.Duration
}

type VssApiClient struct {
	cfg     Config
	baseUrl string
	client  http.Client
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// RestartResult distinguishes the two expected outcomes of a restart.
type RestartResult int

const (
	// RestartTriggered: the render pipeline picked the session up now.
	RestartTriggered RestartResult = iota
	// RestartDeviceOffline: the device is asleep or unreachable. The
	// session is still stored and applies on its next connect, so this is
	// not an error.
	RestartDeviceOffline
)

func NewVssApiClient(cfg Config, logger *zap.SugaredLogger) (*VssApiClient, error) {
	if cfg.Key == "" || cfg.Secret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout: cfg.Timeout,
			}).Dial,
		},
	}
	return &VssApiClient{
		cfg:     cfg,
		baseUrl: "http://" + cfg.Host + ":" + strconv.Itoa(cfg.Port) + "/api",
		client:  httpClient,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// do signs and sends one request. Transport failures come back wrapped; the
// response status is returned unmapped so callers can special-case codes.
func (c *VssApiClient) do(method string, path string, body []byte) (int, []byte, error) {
	req, err := c.signRequest(method, path, body)
	if err != nil {
		return 0, nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("vss api: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("vss api: %s %s: reading response: %w", method, path, err)
	}
	return res.StatusCode, respBody, nil
}

// checkStatus maps the common status codes onto the error taxonomy.
func checkStatus(method string, path string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrAuth)
	default:
		return &StatusError{Method: method, Path: path, Status: status, Body: string(body)}
	}
}

// ListDevices returns summaries of every device VSS knows about. Devices
// register themselves when they power on in range, so this is how a new
// panel's uuid is discovered.
func (c *VssApiClient) ListDevices() ([]vssStructs.Device, error) {
	status, body, err := c.do(http.MethodGet, "/device/", nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(http.MethodGet, "/device/", status, body); err != nil {
		return nil, err
	}
	var devices []vssStructs.Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("vss api: decoding device list: %w", err)
	}
	for i := range devices {
		devices[i].Uuid = vssStructs.NormalizeUuid(devices[i].Uuid)
	}
	c.logger.Infof("Got list of %d devices", len(devices))
	return devices, nil
}

// GetDevice fetches the raw device object. A device PUT replaces the whole
// record, so callers mutate this object and hand it back to UpdateDevice
// rather than building a fresh one.
func (c *VssApiClient) GetDevice(uuid string) (vssStructs.DeviceObject, error) {
	path := "/device/" + vssStructs.NormalizeUuid(uuid)
	status, body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(http.MethodGet, path, status, body); err != nil {
		return nil, err
	}
	var device vssStructs.DeviceObject
	if err := json.Unmarshal(body, &device); err != nil {
		return nil, fmt.Errorf("vss api: decoding device: %w", err)
	}
	return device, nil
}

// UpdateDevice writes the full device object back.
func (c *VssApiClient) UpdateDevice(device vssStructs.DeviceObject) error {
	uuid := device.Uuid()
	path := "/device/" + uuid
	payload, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("vss api: encoding device: %w", err)
	}
	status, body, err := c.do(http.MethodPut, path, payload)
	if err != nil {
		return err
	}
	if err := checkStatus(http.MethodPut, path, status, body); err != nil {
		return err
	}
	c.logger.Infof("Updated device %s", uuid)
	return nil
}

func (c *VssApiClient) GetSession(uuid string) (*vssStructs.Session, error) {
	path := "/session/" + vssStructs.NormalizeUuid(uuid)
	status, body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(http.MethodGet, path, status, body); err != nil {
		return nil, err
	}
	var session vssStructs.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("vss api: decoding session: %w", err)
	}
	session.Uuid = vssStructs.NormalizeUuid(session.Uuid)
	return &session, nil
}

// SetSession points a device at a content url with the HTML backend. After
// the PUT it re-reads the session and returns ErrFieldsRejected if the
// fields came back empty: VSS silently drops field keys with unexpected
// casing, so a 204 alone proves nothing. Best effort: a concurrent editor
// could race the verification read.
func (c *VssApiClient) SetSession(uuid string, url string, reloadTimeout int, options map[string]any) error {
	uuid = vssStructs.NormalizeUuid(uuid)
	session := vssStructs.Session{
		Uuid: uuid,
		Backend: vssStructs.Backend{
			Name: vssStructs.BackendHTML,
			Fields: map[string]string{
				vssStructs.FieldURL:           url,
				vssStructs.FieldReloadTimeout: strconv.Itoa(reloadTimeout),
			},
		},
		Options: options,
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("vss api: encoding session: %w", err)
	}
	path := "/session/" + uuid
	status, body, err := c.do(http.MethodPut, path, payload)
	if err != nil {
		return err
	}
	if err := checkStatus(http.MethodPut, path, status, body); err != nil {
		return err
	}
	c.logger.Infof("Session %s now points at %s", uuid, url)

	stored, err := c.GetSession(uuid)
	if err != nil {
		return fmt.Errorf("verifying session %s: %w", uuid, err)
	}
	if len(stored.Backend.Fields) == 0 {
		return fmt.Errorf("session %s: %w", uuid, ErrFieldsRejected)
	}
	return nil
}

// RestartSession asks VSS to re-fetch and re-render the session content now.
// HTTP 500 here specifically means the device is offline; the stored session
// applies on its next connect, so that maps to RestartDeviceOffline with a
// nil error.
func (c *VssApiClient) RestartSession(uuid string) (RestartResult, error) {
	path := "/session/" + vssStructs.NormalizeUuid(uuid) + "/restart"
	status, body, err := c.do(http.MethodPost, path, nil)
	if err != nil {
		return RestartTriggered, err
	}
	if status == http.StatusInternalServerError {
		c.logger.Infof("Device for session %s is offline, config applies on reconnect", uuid)
		return RestartDeviceOffline, nil
	}
	if err := checkStatus(http.MethodPost, path, status, body); err != nil {
		return RestartTriggered, err
	}
	return RestartTriggered, nil
}
