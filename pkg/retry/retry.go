// Package retry runs actions until they succeed or a strategy gives up.
package retry

// Action is a unit of work that may be attempted more than once.
type Action func() error

// Retry runs action until it returns nil or one of strategies declines another
// attempt. It returns the number of attempts made along with the last error.
//
// Strategies are consulted in order and evaluation stops at the first that
// declines, so delaying strategies belong at the end of the list.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		if !shouldRetry(strategies, attempts, err) {
			return attempts, err
		}
	}
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, strategy := range strategies {
		if !strategy(attempts, err) {
			return false
		}
	}
	return true
}
