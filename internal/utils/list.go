package utils

func IsStringInSlice(s string, slice []string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// AppendUnique appends the values missing from slice, keeping order.
func AppendUnique(slice []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !IsStringInSlice(v, slice) {
			slice = append(slice, v)
		}
	}
	return slice
}
