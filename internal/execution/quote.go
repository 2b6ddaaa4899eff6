package execution

// Quote wraps a single argument for the platform shell so spaces and
// wildcards reach VUnit unchanged.
func Quote(arg string) string {
	return quote(arg)
}
