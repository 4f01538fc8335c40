package common

// Key codes delivered by the window key callbacks. They match GLFW key codes, which use
// ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyR     = 82
	KeyF     = 70
	KeyP     = 80
	KeySpace = 32

	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
	Key5 = 53
	Key6 = 54
	Key7 = 55
	Key8 = 56
	Key9 = 57
)

// Non-printable keys (GLFW).
const (
	KeyEsc        = 256
	KeyEnter      = 257
	KeyTab        = 258
	KeyBackspace  = 259
	KeyRight      = 262
	KeyLeft       = 263
	KeyDown       = 264
	KeyUp         = 265
	KeyPageUp     = 266
	KeyPageDown   = 267
	KeyLeftShift  = 340
	KeyRightShift = 344
)

// Modifier bits delivered alongside key codes (GLFW ModifierKey).
const (
	ModShift   uint32 = 0x0001
	ModControl uint32 = 0x0002
	ModAlt     uint32 = 0x0004
)
