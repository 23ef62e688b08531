package provenance

import (
	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("provtrack-fingerprint-key-000032")

// fingerprint identifies the exact inputs of a report load.
func fingerprint(in Inputs) uint64 {
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0
	}
	for _, part := range []string{
		in.PreGraph.String(),
		in.PostGraph.String(),
		string(in.Code.Variant()),
		in.Code.Text().String(),
	} {
		_, _ = hash.Write([]byte(part))
		_, _ = hash.Write([]byte{0})
	}
	_, _ = hash.Write(in.RawMapping)
	return hash.Sum64()
}
