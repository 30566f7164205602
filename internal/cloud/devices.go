package cloud

import (
	"context"
	"fmt"
)

// DeviceInfo is one device record from the cloud directory.
//
// Identifiers are stable and globally unique; the attribute list carries
// the full state snapshot at fetch time.
type DeviceInfo struct {
	DeviceUUID    string          `json:"deviceUuid"`
	Category      string          `json:"category"`
	TypeCode      string          `json:"typeCode"`
	AttributeList []AttributeInfo `json:"attributeList"`
}

// AttributeInfo is a single name/value attribute in a device record.
// Values are string-encoded regardless of their logical type.
type AttributeInfo struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FetchDevices retrieves the account's device records from the cloud.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []DeviceInfo: Device records as reported by the server
//   - error: ErrNoSession if not logged in, otherwise the fetch failure
func (s *Session) FetchDevices(ctx context.Context) ([]DeviceInfo, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return nil, ErrNoSession
	}

	var resp struct {
		DeviceList []DeviceInfo `json:"deviceList"`
	}
	if err := s.post(ctx, s.life2URL+pathDeviceList, token, map[string]string{}, &resp); err != nil {
		return nil, err
	}

	if resp.DeviceList == nil {
		return nil, fmt.Errorf("%w: missing deviceList", ErrMalformedResponse)
	}

	return resp.DeviceList, nil
}
