package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info
	IconVersion = "" // tag
	IconGo      = "" // go gopher

	IconTrash  = "" // trash
	IconFolder = "" // folder

	IconSession = "" // window
	IconTab     = "" // table
	IconClock   = "" // clock
	IconLock    = "" // lock (incognito)
)
