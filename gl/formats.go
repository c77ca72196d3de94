package gl

import "github.com/gogpu/gputypes"

// FormatInfo is the GL triple needed to allocate storage for a texture
// format and to read it back.
type FormatInfo struct {
	Internal Enum // sized internal format
	Format   Enum // pixel transfer format
	Type     Enum // pixel transfer type
}

var formatTable = map[gputypes.TextureFormat]FormatInfo{
	gputypes.TextureFormatRGBA8Unorm:          {RGBA8, RGBA, UNSIGNED_BYTE},
	gputypes.TextureFormatRGBA8UnormSrgb:      {SRGB8_ALPHA8, RGBA, UNSIGNED_BYTE},
	gputypes.TextureFormatBGRA8Unorm:          {RGBA8, BGRA, UNSIGNED_BYTE},
	gputypes.TextureFormatBGRA8UnormSrgb:      {SRGB8_ALPHA8, BGRA, UNSIGNED_BYTE},
	gputypes.TextureFormatR8Unorm:             {R8, RED, UNSIGNED_BYTE},
	gputypes.TextureFormatR32Float:            {R32F, RED, FLOAT},
	gputypes.TextureFormatRG32Float:           {RG32F, RG, FLOAT},
	gputypes.TextureFormatRGBA32Float:         {RGBA32F, RGBA, FLOAT},
	gputypes.TextureFormatDepth32Float:        {DEPTH_COMPONENT32F, DEPTH_COMPONENT, FLOAT},
	gputypes.TextureFormatDepth24PlusStencil8: {DEPTH24_STENCIL8, DEPTH_STENCIL, UNSIGNED_INT_24_8},
}

// LookupFormat maps a texture format to its GL storage triple. The second
// result is false for formats with no GL equivalent here.
func LookupFormat(f gputypes.TextureFormat) (FormatInfo, bool) {
	info, ok := formatTable[f]
	return info, ok
}

// InternalFormat returns the sized GL internal format for f, or RGBA8 when f
// is undefined or unknown.
func InternalFormat(f gputypes.TextureFormat) Enum {
	if info, ok := formatTable[f]; ok {
		return info.Internal
	}
	return RGBA8
}

// TransferFor returns the pixel transfer format and type matching a sized
// internal format. Unknown formats transfer as RGBA bytes.
func TransferFor(internal Enum) (format, ty Enum) {
	switch internal {
	case DEPTH_COMPONENT16, DEPTH_COMPONENT24:
		return DEPTH_COMPONENT, UNSIGNED_INT
	case DEPTH_COMPONENT32F:
		return DEPTH_COMPONENT, FLOAT
	case DEPTH24_STENCIL8:
		return DEPTH_STENCIL, UNSIGNED_INT_24_8
	case DEPTH32F_STENCIL8:
		return DEPTH_STENCIL, FLOAT_32_UNSIGNED_INT_24_8_REV
	case STENCIL_INDEX8:
		return STENCIL_INDEX, UNSIGNED_BYTE
	case R8:
		return RED, UNSIGNED_BYTE
	case RGB8:
		return RGB, UNSIGNED_BYTE
	case RGBA16F:
		return RGBA, HALF_FLOAT
	case RGBA32F:
		return RGBA, FLOAT
	}
	return RGBA, UNSIGNED_BYTE
}

// IsDepthFormat reports whether internal has a depth component.
func IsDepthFormat(internal Enum) bool {
	switch internal {
	case DEPTH_COMPONENT, DEPTH_COMPONENT16, DEPTH_COMPONENT24, DEPTH_COMPONENT32F,
		DEPTH_STENCIL, DEPTH24_STENCIL8, DEPTH32F_STENCIL8:
		return true
	}
	return false
}

// IsStencilFormat reports whether internal has a stencil component.
func IsStencilFormat(internal Enum) bool {
	switch internal {
	case STENCIL_INDEX8, DEPTH_STENCIL, DEPTH24_STENCIL8, DEPTH32F_STENCIL8:
		return true
	}
	return false
}

// CompareFunc maps a depth/stencil comparison to its GL enum.
func CompareFunc(f gputypes.CompareFunction) Enum {
	switch f {
	case gputypes.CompareFunctionNever:
		return NEVER
	case gputypes.CompareFunctionLess:
		return LESS
	case gputypes.CompareFunctionEqual:
		return EQUAL
	case gputypes.CompareFunctionLessEqual:
		return LEQUAL
	case gputypes.CompareFunctionGreater:
		return GREATER
	case gputypes.CompareFunctionNotEqual:
		return NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return GEQUAL
	case gputypes.CompareFunctionAlways:
		return ALWAYS
	}
	return LESS
}

// BlendFactor maps a blend factor to its GL enum.
func BlendFactor(f gputypes.BlendFactor) Enum {
	switch f {
	case gputypes.BlendFactorZero:
		return ZERO
	case gputypes.BlendFactorOne:
		return ONE
	case gputypes.BlendFactorSrc:
		return SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ONE_MINUS_DST_ALPHA
	}
	return ONE
}

// CullFaceMode maps a cull mode to the glCullFace argument. The second
// result is false for CullModeNone, which disables culling instead.
func CullFaceMode(m gputypes.CullMode) (Enum, bool) {
	switch m {
	case gputypes.CullModeFront:
		return FRONT, true
	case gputypes.CullModeBack:
		return BACK, true
	}
	return 0, false
}
