//go:build !windows || !amd64

package openvr

// Client is a placeholder for the live runtime connection. Only 64-bit
// Windows hosts the runtime; these stubs keep the bridge compiling and
// testable everywhere else.
type Client struct{}

// Init always fails off-host.
func Init(ApplicationType) (*Client, error) {
	return nil, ErrUnsupported
}

func (c *Client) Version() string                                 { return "" }
func (c *Client) DeviceClass(uint32) DeviceClass                  { return ClassInvalid }
func (c *Client) DeviceConnected(uint32) bool                     { return false }
func (c *Client) DeviceActivity(uint32) ActivityLevel             { return ActivityUnknown }
func (c *Client) ControllerRole(uint32) ControllerRole            { return RoleInvalid }
func (c *Client) StringProperty(uint32, Property) (string, error) { return "", ErrUnsupported }
func (c *Client) FloatProperty(uint32, Property) (float32, error) { return 0, ErrUnsupported }
func (c *Client) BoolProperty(uint32, Property) (bool, error)     { return false, ErrUnsupported }
func (c *Client) SceneProcessID() uint32                          { return 0 }
func (c *Client) ApplicationKeyForProcess(uint32) (string, error) { return "", ErrUnsupported }
func (c *Client) ApplicationName(string) (string, error)          { return "", ErrUnsupported }
func (c *Client) PlayArea() (width, depth float32, ok bool)       { return 0, 0, false }
func (c *Client) DrainEvents() bool                               { return false }
func (c *Client) Close()                                          {}
func (c *Client) RegisterManifest(string) error                   { return ErrUnsupported }
func (c *Client) AutoLaunchEnabled(string) bool                   { return false }
func (c *Client) SetAutoLaunch(string, bool) error                { return ErrUnsupported }
