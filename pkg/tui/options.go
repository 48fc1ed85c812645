package tui

// Theme holds message prefixes printed by the filler.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is set.
var DefaultTheme = Theme{
	InfoPrefix:  "",
	ErrorPrefix: "✗ ",
}

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithMaxAttempts bounds how many times one field is prompted. Zero or less
// means no bound.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		f.maxAttempts = n
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithConfirm asks for confirmation before submitting.
func WithConfirm(confirm bool) Option {
	return func(f *Filler) {
		f.confirm = confirm
	}
}
