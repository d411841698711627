package archiveindex

import "github.com/wowemulation-dev/cascette-go/keys"

// NumBuckets is the number of EKey bucket shards a CASC storage layout uses.
const NumBuckets = 16

// Bucket folds a full EncodingKey's nibbles with XOR into one of NumBuckets
// shards: the canonical bucket-derivation function used to pick which
// `.idx`/`.index` shard owns a given key.
func Bucket(ek keys.EncodingKey) uint8 {
	var acc uint8
	for _, b := range ek {
		acc ^= b>>4 ^ b&0x0F
	}
	return acc & 0x0F
}
