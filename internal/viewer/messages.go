package viewer

import "ar-viewer/internal/ar"

// User-facing messages.
const (
	MsgInstallRuntime    = "Please install ARCore"
	MsgUpdateRuntime     = "Please update ARCore"
	MsgUpdateApp         = "Please update this app"
	MsgDeviceUnsupported = "This device does not support AR"
	MsgSessionFailed     = "Failed to create AR session"
	MsgCameraUnavailable = "Camera not available. Please restart the app."
	MsgNeedsPermission   = "This app needs camera permission"
)

// Message returns the user-facing text for err.
func Message(err error) string {
	switch ar.KindOf(err) {
	case ar.PermissionDenied:
		return MsgNeedsPermission
	case ar.CameraUnavailable:
		return MsgCameraUnavailable
	case ar.Unsupported:
		switch ar.ReasonOf(err) {
		case ar.ReasonNotInstalled, ar.ReasonUserDeclinedInstall:
			return MsgInstallRuntime
		}
		return MsgDeviceUnsupported
	case ar.VersionMismatch:
		if ar.ReasonOf(err) == ar.ReasonAppTooOld {
			return MsgUpdateApp
		}
		return MsgUpdateRuntime
	}
	return MsgSessionFailed
}
