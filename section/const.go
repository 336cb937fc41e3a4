package section

const (
	// Bit masks of the packed Options field
	VisibilityMask   = 0x0001 // Mask for visibility payload bit (bit 0)
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicValueV1Opt      = 0xC410 // MagicValueV1Opt identifies a version 1 index value.
	MagicDescriptorV1Opt = 0xC420 // MagicDescriptorV1Opt identifies a version 1 index descriptor.
)

// fixed section sizes in bytes
const (
	ValueHeaderSize      = 16 // header in front of every stored value
	DescriptorHeaderSize = 16 // header in front of a binary index descriptor

	// MaxPayloadLength is the largest payload a value header can describe.
	MaxPayloadLength = 1<<32 - 1
)
