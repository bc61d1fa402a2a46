package simd

// byteFrequencies holds empirical byte frequency ranks derived from English
// text, source code and binary sampling. Lower rank = rarer byte = better
// search anchor. This mirrors the rare-byte heuristic of the memchr crate.
var byteFrequencies = [256]byte{
	// 0x00-0x1F: control characters
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x20-0x2F: space and punctuation
	255, 60, 140, 50, 40, 35, 30, 160, 130, 130, 80, 55, 200, 140, 210, 100,
	// 0x30-0x3F: digits
	180, 190, 170, 150, 140, 140, 130, 120, 120, 120, 150, 100, 70, 160, 70, 50,
	// 0x40-0x5F: '@', uppercase, brackets
	25, 120, 80, 90, 85, 130, 75, 70, 80, 115, 30, 35, 90, 85, 100, 105,
	80, 15, 100, 110, 115, 70, 45, 55, 20, 50, 10, 90, 60, 90, 20, 110,
	// 0x60-0x7F: backtick, lowercase, braces
	30, 225, 140, 170, 165, 245, 135, 130, 150, 200, 25, 65, 175, 155, 195, 205,
	145, 15, 195, 200, 215, 150, 75, 95, 45, 120, 20, 85, 40, 85, 15, 0,
	// 0x80-0xFF: UTF-8 continuation range, rare in text corpora
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
}

// ByteRank returns the static frequency rank of b; lower is rarer.
func ByteRank(b byte) byte { return byteFrequencies[b] }

// RarestByte returns the needle byte with the lowest frequency rank and its
// position, ties broken by the leftmost occurrence. The needle must be
// non-empty.
func RarestByte(needle []byte) (rare byte, index int) {
	rare = needle[0]
	index = 0
	minRank := byteFrequencies[rare]

	for i := 1; i < len(needle); i++ {
		b := needle[i]
		if r := byteFrequencies[b]; r < minRank {
			rare, index, minRank = b, i, r
		}
	}
	return rare, index
}
