package pagestore

// WithWriteEpoch is the scoped-acquisition idiom §9 asks for: it opens a
// write epoch, runs fn, and guarantees FinishWrite runs exactly once on
// every exit path, including a panic inside fn (which is re-raised after
// FinishWrite completes).
func WithWriteEpoch(store PageStore, fn func() error) error {
	if err := store.StartWrite(); err != nil {
		return err
	}

	var panicked interface{}
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = r
			}
		}()
		err = fn()
	}()

	if finishErr := store.FinishWrite(); finishErr != nil && err == nil && panicked == nil {
		err = finishErr
	}

	if panicked != nil {
		panic(panicked)
	}

	return err
}
