package util

// Contains reports whether elem occurs in slice.
func Contains[T comparable](slice []T, elem T) bool {
	for _, x := range slice {
		if x == elem {
			return true
		}
	}

	return false
}

// Map returns a new slice holding f applied to each element of slice, in
// order.
func Map[T, R any](slice []T, f func(T) R) []R {
	mapped := make([]R, len(slice))

	for i, elem := range slice {
		mapped[i] = f(elem)
	}

	return mapped
}
