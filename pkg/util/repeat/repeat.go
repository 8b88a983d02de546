package repeat

import "time"

// Repeat runs f up to attempts times, sleeping delay between tries, and
// returns the last error when every attempt fails.
func Repeat(attempts int, delay time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}

	return err
}
