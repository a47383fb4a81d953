package openvr

import "testing"

func TestDeviceClassString(t *testing.T) {
	tests := []struct {
		class DeviceClass
		want  string
	}{
		{ClassInvalid, "invalid"},
		{ClassHMD, "hmd"},
		{ClassController, "controller"},
		{ClassGenericTracker, "generic_tracker"},
		{ClassTrackingReference, "tracking_reference"},
		{ClassDisplayRedirect, "display_redirect"},
		{DeviceClass(99), "invalid"},
	}

	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("DeviceClass(%d).String() = %q, want %q", int32(tt.class), got, tt.want)
		}
	}
}

func TestControllerRoleString(t *testing.T) {
	tests := []struct {
		role ControllerRole
		want string
	}{
		{RoleInvalid, "none"},
		{RoleLeftHand, "left_hand"},
		{RoleRightHand, "right_hand"},
		{RoleOptOut, "opt_out"},
		{RoleTreadmill, "treadmill"},
		{RoleStylus, "stylus"},
		{ControllerRole(99), "none"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("ControllerRole(%d).String() = %q, want %q", int32(tt.role), got, tt.want)
		}
	}
}
