package protocol

// ID is an identifier used to mark the protocol a stream or a handler belongs to.
type ID string

const (
	// TestingID is a protocol ID reserved for testing purposes.
	TestingID ID = "/_testing"
)

// String returns the string form of the protocol ID.
func (i ID) String() string {
	return string(i)
}

// ParseStringsToIDs converts a string slice to an ID slice.
func ParseStringsToIDs(strs []string) []ID {
	res := make([]ID, len(strs))
	for idx := range strs {
		res[idx] = ID(strs[idx])
	}
	return res
}

// ParseIDsToStrings converts an ID slice to a string slice.
func ParseIDsToStrings(pids []ID) []string {
	res := make([]string, len(pids))
	for i := range pids {
		res[i] = string(pids[i])
	}
	return res
}
