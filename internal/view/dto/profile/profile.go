package profile

// Status kinds decide how the status line is styled.
const (
	StatusInfo    = "info"
	StatusSuccess = "success"
	StatusError   = "error"
)

// FormData is the View Model of the profile editor.
type FormData struct {
	Email     string
	FullName  string
	AvatarURL string
	// DisplayAvatar is AvatarURL, or the provider avatar when none is stored.
	DisplayAvatar string
	Initial       string
	Status        string
	StatusKind    string
}
