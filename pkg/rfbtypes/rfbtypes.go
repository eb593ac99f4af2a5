// Package rfbtypes holds the wire-format constants shared by the RFB
// protocol engine, the encoding/decoding engines, and the LTSM multiplexer.
package rfbtypes

// Client-to-server message types.
const (
	ClientSetPixelFormat            = 0
	ClientSetEncodings              = 2
	ClientFramebufferUpdateRequest  = 3
	ClientKeyEvent                  = 4
	ClientPointerEvent              = 5
	ClientCutText                   = 6
	ClientEnableContinuousUpdates   = 150
	ClientSetDesktopSize            = 251
	ClientLtsmProtocol              = 255
)

// Server-to-client message types.
const (
	ServerFramebufferUpdate = 0
	ServerSetColourMap      = 1
	ServerBell              = 2
	ServerCutText           = 3
	ServerLtsmProtocol      = 255
)

// Security types.
const (
	SecurityTypeNone      = 1
	SecurityTypeVNC       = 2
	SecurityTypeVeNCrypt  = 19
	SecurityTypeKerberos  = 129
)

// VeNCrypt sub-types.
const (
	VeNCryptTLSNone  = 1
	VeNCryptX509None = 2
)

// Encoding numbers.
const (
	EncodingRaw     = 0
	EncodingRRE     = 2
	EncodingCoRRE   = 4
	EncodingHextile = 5
	EncodingZlib    = 6
	EncodingTRLE    = 15
	EncodingZRLE    = 16
	EncodingZlibHex = 8

	// Pseudo-encodings.
	EncodingDesktopResize         = -223
	EncodingExtendedDesktopSize   = -308
	EncodingLastRect              = -224
	EncodingContinuousUpdates     = -313
	EncodingLtsmSupport           = -314
)

// Hextile subencoding flag bits.
const (
	HextileRaw        = 1 << 0
	HextileBackground = 1 << 1
	HextileForeground = 1 << 2
	HextileSubRects    = 1 << 3
	HextileColoured    = 1 << 4
)

// TRLE/ZRLE subencoding values.
const (
	TRLESubencodingRaw       = 0
	TRLESubencodingSolid     = 1
	TRLESubencodingPlainRLE  = 128
	// Palette subencodings occupy 2..16 (packed palette) and 129..255
	// (palette-RLE, value = paletteSize+128).
)

// ExtendedDesktopSize status codes.
const (
	ExtendedDesktopSizeOK         = 0
	ExtendedDesktopSizeProhibited = 1
	ExtendedDesktopSizeRandrError = 3
)

// LTSM framing constants.
const (
	LtsmMagic       = 0xFF
	LtsmVersion     = 0x01
	LtsmChannelSystem = 0
	LtsmChannelMin    = 1
	LtsmChannelMax    = 253
	LtsmChannelReserved = 255
	LtsmMaxPayload    = 65535
)
