//go:build windows && amd64

package openvr

// Interface version strings passed to VR_GetGenericInterface. The
// FnTable prefix asks for C-callable function pointer tables instead of
// C++ objects.
const (
	systemVersion       = "FnTable:IVRSystem_022"
	applicationsVersion = "FnTable:IVRApplications_007"
	chaperoneVersion    = "FnTable:IVRChaperone_003"
)

// The structs below mirror the runtime's FnTable layouts entry for
// entry. Field order is the ABI; adding, removing or reordering a field
// desynchronises every call after it. Unused entries are kept so the
// used ones land on the right offsets.

type systemFnTable struct {
	GetRecommendedRenderTargetSize                  uintptr
	GetProjectionMatrix                             uintptr
	GetProjectionRaw                                uintptr
	ComputeDistortion                               uintptr
	GetEyeToHeadTransform                           uintptr
	GetTimeSinceLastVsync                           uintptr
	GetD3D9AdapterIndex                             uintptr
	GetDXGIOutputInfo                               uintptr
	GetOutputDevice                                 uintptr
	IsDisplayOnDesktop                              uintptr
	SetDisplayVisibility                            uintptr
	GetDeviceToAbsoluteTrackingPose                 uintptr
	GetSeatedZeroPoseToStandingAbsoluteTrackingPose uintptr
	GetRawZeroPoseToStandingAbsoluteTrackingPose    uintptr
	GetSortedTrackedDeviceIndicesOfClass            uintptr
	GetTrackedDeviceActivityLevel                   uintptr
	ApplyTransform                                  uintptr
	GetTrackedDeviceIndexForControllerRole          uintptr
	GetControllerRoleForTrackedDeviceIndex          uintptr
	GetTrackedDeviceClass                           uintptr
	IsTrackedDeviceConnected                        uintptr
	GetBoolTrackedDeviceProperty                    uintptr
	GetFloatTrackedDeviceProperty                   uintptr
	GetInt32TrackedDeviceProperty                   uintptr
	GetUint64TrackedDeviceProperty                  uintptr
	GetMatrix34TrackedDeviceProperty                uintptr
	GetArrayTrackedDeviceProperty                   uintptr
	GetStringTrackedDeviceProperty                  uintptr
	GetPropErrorNameFromEnum                        uintptr
	PollNextEvent                                   uintptr
	GetEventTypeNameFromEnum                        uintptr
	GetHiddenAreaMesh                               uintptr
	GetControllerState                              uintptr
	GetControllerStateWithPose                      uintptr
	TriggerHapticPulse                              uintptr
	IsInputAvailable                                uintptr
	IsSteamVRDrawingControllers                     uintptr
	ShouldApplicationPause                          uintptr
	ShouldApplicationReduceRenderingWork            uintptr
	PerformFirmwareUpdate                           uintptr
	AcknowledgeQuitExiting                          uintptr
	GetAppContainerFilePaths                        uintptr
	GetRuntimeVersion                               uintptr
}

type applicationsFnTable struct {
	AddApplicationManifest               uintptr
	RemoveApplicationManifest            uintptr
	IsApplicationInstalled               uintptr
	GetApplicationCount                  uintptr
	GetApplicationKeyByIndex             uintptr
	GetApplicationKeyByProcessID         uintptr
	LaunchApplication                    uintptr
	LaunchTemplateApplication            uintptr
	LaunchApplicationFromMimeType        uintptr
	LaunchDashboardOverlay               uintptr
	CancelApplicationLaunch              uintptr
	IdentifyApplication                  uintptr
	GetApplicationProcessID              uintptr
	GetApplicationsErrorNameFromEnum     uintptr
	GetApplicationPropertyString         uintptr
	GetApplicationPropertyBool           uintptr
	GetApplicationPropertyUint64         uintptr
	SetApplicationAutoLaunch             uintptr
	GetApplicationAutoLaunch             uintptr
	SetDefaultApplicationForMimeType     uintptr
	GetDefaultApplicationForMimeType     uintptr
	GetApplicationSupportedMimeTypes     uintptr
	GetApplicationsThatSupportMimeType   uintptr
	GetApplicationLaunchArguments        uintptr
	GetStartingApplication               uintptr
	GetSceneApplicationState             uintptr
	PerformApplicationPrelaunchCheck     uintptr
	GetSceneApplicationStateNameFromEnum uintptr
	LaunchInternalProcess                uintptr
	GetCurrentSceneProcessID             uintptr
}

type chaperoneFnTable struct {
	GetCalibrationState uintptr
	GetPlayAreaSize     uintptr
	GetPlayAreaRect     uintptr
	ReloadInfo          uintptr
	SetSceneColor       uintptr
	GetBoundsColor      uintptr
	AreBoundsVisible    uintptr
	ForceBoundsVisible  uintptr
}
