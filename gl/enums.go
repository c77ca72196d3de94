package gl

import "strconv"

//nolint:revive // GL enumerants keep their C names.
const (
	FALSE = 0
	TRUE  = 1
	NONE  = 0
	ZERO  = 0
	ONE   = 1

	// Capabilities toggled with Enable/Disable.
	BLEND               = 0x0BE2
	CULL_FACE           = 0x0B44
	DEPTH_TEST          = 0x0B71
	LIGHTING            = 0x0B50
	MULTISAMPLE         = 0x809D
	POLYGON_OFFSET_FILL = 0x8037
	SCISSOR_TEST        = 0x0C11
	STENCIL_TEST        = 0x0B90
	FRAMEBUFFER_SRGB    = 0x8DB9

	// Texture targets.
	TEXTURE_1D                   = 0x0DE0
	TEXTURE_2D                   = 0x0DE1
	TEXTURE_3D                   = 0x806F
	TEXTURE_RECTANGLE            = 0x84F5
	TEXTURE_CUBE_MAP             = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X  = 0x8515
	TEXTURE_2D_ARRAY             = 0x8C1A
	TEXTURE_2D_MULTISAMPLE       = 0x9100
	TEXTURE_2D_MULTISAMPLE_ARRAY = 0x9102
	TEXTURE0                     = 0x84C0
	TEXTURE                      = 0x1702

	// Texture parameters.
	TEXTURE_MAG_FILTER     = 0x2800
	TEXTURE_MIN_FILTER     = 0x2801
	NEAREST                = 0x2600
	LINEAR                 = 0x2601
	NEAREST_MIPMAP_NEAREST = 0x2700
	LINEAR_MIPMAP_NEAREST  = 0x2701
	NEAREST_MIPMAP_LINEAR  = 0x2702
	LINEAR_MIPMAP_LINEAR   = 0x2703

	// Comparison functions.
	NEVER    = 0x0200
	LESS     = 0x0201
	EQUAL    = 0x0202
	LEQUAL   = 0x0203
	GREATER  = 0x0204
	NOTEQUAL = 0x0205
	GEQUAL   = 0x0206
	ALWAYS   = 0x0207

	// Blend factors.
	SRC_COLOR                = 0x0300
	ONE_MINUS_SRC_COLOR      = 0x0301
	SRC_ALPHA                = 0x0302
	ONE_MINUS_SRC_ALPHA      = 0x0303
	DST_ALPHA                = 0x0304
	ONE_MINUS_DST_ALPHA      = 0x0305
	DST_COLOR                = 0x0306
	ONE_MINUS_DST_COLOR      = 0x0307
	SRC_ALPHA_SATURATE       = 0x0308
	CONSTANT_COLOR           = 0x8001
	ONE_MINUS_CONSTANT_COLOR = 0x8002

	// Faces and color buffers.
	FRONT_LEFT     = 0x0400
	BACK_LEFT      = 0x0402
	FRONT          = 0x0404
	BACK           = 0x0405
	FRONT_AND_BACK = 0x0408

	// Framebuffer objects.
	FRAMEBUFFER                               = 0x8D40
	READ_FRAMEBUFFER                          = 0x8CA8
	DRAW_FRAMEBUFFER                          = 0x8CA9
	FRAMEBUFFER_BINDING                       = 0x8CA6
	RENDERBUFFER                              = 0x8D41
	FRAMEBUFFER_COMPLETE                      = 0x8CD5
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT         = 0x8CD6
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT = 0x8CD7
	FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER        = 0x8CDB
	FRAMEBUFFER_INCOMPLETE_READ_BUFFER        = 0x8CDC
	FRAMEBUFFER_UNSUPPORTED                   = 0x8CDD
	FRAMEBUFFER_INCOMPLETE_MULTISAMPLE        = 0x8D56
	FRAMEBUFFER_INCOMPLETE_LAYER_TARGETS      = 0x8DA8
	FRAMEBUFFER_UNDEFINED                     = 0x8219
	COLOR_ATTACHMENT0                         = 0x8CE0
	DEPTH_ATTACHMENT                          = 0x8D00
	STENCIL_ATTACHMENT                        = 0x8D20
	DEPTH_STENCIL_ATTACHMENT                  = 0x821A

	// Clear mask bits.
	DEPTH_BUFFER_BIT   = 0x0100
	ACCUM_BUFFER_BIT   = 0x0200
	STENCIL_BUFFER_BIT = 0x0400
	COLOR_BUFFER_BIT   = 0x4000

	// Pixel formats and types.
	RED                = 0x1903
	RG                 = 0x8227
	RGB                = 0x1907
	RGBA               = 0x1908
	BGRA               = 0x80E1
	DEPTH_COMPONENT    = 0x1902
	DEPTH_STENCIL      = 0x84F9
	STENCIL_INDEX      = 0x1901
	UNSIGNED_BYTE      = 0x1401
	UNSIGNED_INT       = 0x1405
	FLOAT              = 0x1406
	HALF_FLOAT         = 0x140B
	UNSIGNED_INT_24_8  = 0x84FA

	FLOAT_32_UNSIGNED_INT_24_8_REV = 0x8DAD

	// Sized internal formats.
	R8                 = 0x8229
	R32F               = 0x822E
	RG32F              = 0x8230
	RGB8               = 0x8051
	RGBA8              = 0x8058
	SRGB8_ALPHA8       = 0x8C43
	RGBA16F            = 0x881A
	RGBA32F            = 0x8814
	DEPTH_COMPONENT16  = 0x81A5
	DEPTH_COMPONENT24  = 0x81A6
	DEPTH_COMPONENT32F = 0x8CAC
	DEPTH24_STENCIL8   = 0x88F0
	DEPTH32F_STENCIL8  = 0x8CAD
	STENCIL_INDEX8     = 0x8D48

	// Integer and string queries.
	VENDOR                           = 0x1F00
	RENDERER                         = 0x1F01
	VERSION                          = 0x1F02
	EXTENSIONS                       = 0x1F03
	NUM_EXTENSIONS                   = 0x821D
	MAX_SAMPLES                      = 0x8D57
	MAX_TEXTURE_UNITS                = 0x84E2
	MAX_COMBINED_TEXTURE_IMAGE_UNITS = 0x8B4D
	MAX_DRAW_BUFFERS                 = 0x8824
	MAX_COLOR_ATTACHMENTS            = 0x8CDF
	MAX_TEXTURE_SIZE                 = 0x0D33

	// Errors.
	NO_ERROR                      = 0
	INVALID_ENUM                  = 0x0500
	INVALID_VALUE                 = 0x0501
	INVALID_OPERATION             = 0x0502
	STACK_OVERFLOW                = 0x0503
	STACK_UNDERFLOW               = 0x0504
	OUT_OF_MEMORY                 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION = 0x0506

	// Shaders and programs.
	FRAGMENT_SHADER = 0x8B30
	VERTEX_SHADER   = 0x8B31
	GEOMETRY_SHADER = 0x8DD9
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	PROGRAM         = 0x82E2

	// Fixed-function matrix modes.
	MODELVIEW  = 0x1700
	PROJECTION = 0x1701

	// Primitive modes.
	POINTS         = 0x0000
	LINES          = 0x0001
	TRIANGLES      = 0x0004
	TRIANGLE_STRIP = 0x0005
)

var enumNames = map[Enum]string{
	BLEND:                        "GL_BLEND",
	CULL_FACE:                    "GL_CULL_FACE",
	DEPTH_TEST:                   "GL_DEPTH_TEST",
	LIGHTING:                     "GL_LIGHTING",
	MULTISAMPLE:                  "GL_MULTISAMPLE",
	POLYGON_OFFSET_FILL:          "GL_POLYGON_OFFSET_FILL",
	SCISSOR_TEST:                 "GL_SCISSOR_TEST",
	STENCIL_TEST:                 "GL_STENCIL_TEST",
	FRAMEBUFFER_SRGB:             "GL_FRAMEBUFFER_SRGB",
	TEXTURE_1D:                   "GL_TEXTURE_1D",
	TEXTURE_2D:                   "GL_TEXTURE_2D",
	TEXTURE_3D:                   "GL_TEXTURE_3D",
	TEXTURE_RECTANGLE:            "GL_TEXTURE_RECTANGLE",
	TEXTURE_CUBE_MAP:             "GL_TEXTURE_CUBE_MAP",
	TEXTURE_2D_ARRAY:             "GL_TEXTURE_2D_ARRAY",
	TEXTURE_2D_MULTISAMPLE:       "GL_TEXTURE_2D_MULTISAMPLE",
	TEXTURE_2D_MULTISAMPLE_ARRAY: "GL_TEXTURE_2D_MULTISAMPLE_ARRAY",
	FRAMEBUFFER:                  "GL_FRAMEBUFFER",
	READ_FRAMEBUFFER:             "GL_READ_FRAMEBUFFER",
	DRAW_FRAMEBUFFER:             "GL_DRAW_FRAMEBUFFER",
	RENDERBUFFER:                 "GL_RENDERBUFFER",
	DEPTH_ATTACHMENT:             "GL_DEPTH_ATTACHMENT",
	STENCIL_ATTACHMENT:           "GL_STENCIL_ATTACHMENT",
	DEPTH_STENCIL_ATTACHMENT:     "GL_DEPTH_STENCIL_ATTACHMENT",
	RGBA8:                        "GL_RGBA8",
	RGB8:                         "GL_RGB8",
	R8:                           "GL_R8",
	SRGB8_ALPHA8:                 "GL_SRGB8_ALPHA8",
	RGBA16F:                      "GL_RGBA16F",
	RGBA32F:                      "GL_RGBA32F",
	DEPTH_COMPONENT:              "GL_DEPTH_COMPONENT",
	DEPTH_COMPONENT16:            "GL_DEPTH_COMPONENT16",
	DEPTH_COMPONENT24:            "GL_DEPTH_COMPONENT24",
	DEPTH_COMPONENT32F:           "GL_DEPTH_COMPONENT32F",
	DEPTH24_STENCIL8:             "GL_DEPTH24_STENCIL8",
	DEPTH32F_STENCIL8:            "GL_DEPTH32F_STENCIL8",
	STENCIL_INDEX8:               "GL_STENCIL_INDEX8",
	INVALID_ENUM:                 "GL_INVALID_ENUM",
	INVALID_VALUE:                "GL_INVALID_VALUE",
	INVALID_OPERATION:            "GL_INVALID_OPERATION",
	STACK_OVERFLOW:               "GL_STACK_OVERFLOW",
	STACK_UNDERFLOW:              "GL_STACK_UNDERFLOW",
	OUT_OF_MEMORY:                "GL_OUT_OF_MEMORY",

	INVALID_FRAMEBUFFER_OPERATION:             "GL_INVALID_FRAMEBUFFER_OPERATION",
	FRAMEBUFFER_COMPLETE:                      "GL_FRAMEBUFFER_COMPLETE",
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT:         "GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT",
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT: "GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT",
	FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:        "GL_FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER",
	FRAMEBUFFER_INCOMPLETE_READ_BUFFER:        "GL_FRAMEBUFFER_INCOMPLETE_READ_BUFFER",
	FRAMEBUFFER_UNSUPPORTED:                   "GL_FRAMEBUFFER_UNSUPPORTED",
	FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:        "GL_FRAMEBUFFER_INCOMPLETE_MULTISAMPLE",
	FRAMEBUFFER_INCOMPLETE_LAYER_TARGETS:      "GL_FRAMEBUFFER_INCOMPLETE_LAYER_TARGETS",
	FRAMEBUFFER_UNDEFINED:                     "GL_FRAMEBUFFER_UNDEFINED",
}

// String returns the GL name of well-known enumerants and a hex literal
// for everything else.
func (e Enum) String() string {
	if n, ok := enumNames[e]; ok {
		return n
	}
	if e >= COLOR_ATTACHMENT0 && e < COLOR_ATTACHMENT0+16 {
		return "GL_COLOR_ATTACHMENT" + strconv.Itoa(int(e-COLOR_ATTACHMENT0))
	}
	return "0x" + strconv.FormatUint(uint64(e), 16)
}
