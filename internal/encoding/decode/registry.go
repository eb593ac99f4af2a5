package decode

// NewRegistry builds the default decoder registry, keyed by RFB encoding
// number, mirroring encoding.NewRegistry on the client side.
func NewRegistry() map[int32]Decoder {
	return map[int32]Decoder{
		0:  RawDecoder{},
		2:  RREDecoder{},
		4:  CoRREDecoder{},
		5:  HextileDecoder{},
		6:  NewZlibDecoder(),
		8:  NewZlibHexDecoder(),
		15: TRLEDecoder{},
		16: NewZRLEDecoder(),
	}
}
