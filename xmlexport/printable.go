package xmlexport

// firstNonPrintable returns the index of the first byte outside printable
// ASCII (0x20..0x7E), or -1 when every byte is printable. The classifier is
// locale-independent on purpose: forensic output must not depend on the
// machine that produced it.
func firstNonPrintable(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return i
		}
	}
	return -1
}
