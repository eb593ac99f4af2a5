package encoding

// Select picks the best encoding from clientEncodings (the client's
// SetEncodings list) by walking it in the client's own order and returning
// the first entry the registry recognises, falling back to Raw (0) when
// none of the client's advertised encodings are recognised. The client's
// order is authoritative; there is no server-side preference table to
// override it.
func Select(clientEncodings []int32, registry map[int32]Encoder) Encoder {
	for _, n := range clientEncodings {
		if enc, ok := registry[n]; ok {
			return enc
		}
	}
	return registry[0]
}

// NewRegistry builds the default encoder registry, keyed by RFB encoding
// number. zlibLevel is shared by every stateful (Zlib/ZlibHex/ZRLE) codec.
func NewRegistry(zlibLevel int) map[int32]Encoder {
	return map[int32]Encoder{
		0:  RawEncoder{},
		2:  RREEncoder{},
		4:  CoRREEncoder{},
		5:  HextileEncoder{},
		6:  NewZlibEncoder(zlibLevel),
		8:  NewZlibHexEncoder(zlibLevel),
		15: TRLEEncoder{},
		16: NewZRLEEncoder(zlibLevel),
	}
}
