package observe

// SafeCall invokes fn and discards any panic it raises, so a misbehaving
// hook can never affect the engine's control flow or metrics. Hooks are
// observability, not part of the contract.
func SafeCall(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn()
}
