package common

import (
	"cmp"

	"github.com/go-gl/mathgl/mgl32"
)

// World-space vector types shared by the grid packages.
type (
	Vec3 = mgl32.Vec3
	Vec2 = mgl32.Vec2
)

// IT is the numeric type set accepted by the scalar helpers.
type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Min returns the smaller of the two values.
func Min[T cmp.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of the two values.
func Max[T cmp.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// / Gets the standard width (x-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The width offset to apply to the current cell position to move in the direction.
func GetDirOffsetX(direction int32) int32 {
	offset := [4]int32{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard depth (z-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The depth offset to apply to the current cell position to move in the direction.
func GetDirOffsetZ(direction int32) int32 {
	offset := [4]int32{0, 1, 0, -1}
	return offset[direction&0x03]
}

// / Gets the direction for the specified offset. One of x and z should be 0.
// / @param[in]		offsetX		The x offset. [Limits: -1 <= value <= 1]
// / @param[in]		offsetZ		The z offset. [Limits: -1 <= value <= 1]
// / @return The direction that represents the offset.
func GetDirForOffset(offsetX, offsetZ int32) int32 {
	dirs := [5]int32{3, 0, -1, 2, 1}
	return dirs[((offsetZ+1)<<1)+offsetX]
}
