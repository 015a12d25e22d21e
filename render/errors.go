// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Render errors.
var (
	// ErrDeviceUnavailable is returned by NewContext when no device is given.
	// It means the compositor cannot run at all.
	ErrDeviceUnavailable = errors.New("render: GPU device unavailable")

	// ErrInvalidDimensions is returned for zero, negative, or oversized
	// texture dimensions.
	ErrInvalidDimensions = errors.New("render: invalid dimensions")

	// ErrUnsupportedFormat is returned for texture or pixel formats the
	// device cannot store.
	ErrUnsupportedFormat = errors.New("render: unsupported format")

	// ErrTextureReleased is returned when operating on a destroyed texture.
	ErrTextureReleased = errors.New("render: texture has been released")

	// ErrBufferTooSmall is returned when a read-back or upload buffer cannot
	// hold the requested region at the given stride.
	ErrBufferTooSmall = errors.New("render: buffer too small")

	// ErrQueueClosed is returned when submitting to a closed queue.
	ErrQueueClosed = errors.New("render: queue closed")

	// ErrAlreadySubmitted is returned when a command buffer is submitted twice.
	ErrAlreadySubmitted = errors.New("render: command buffer already submitted")

	// ErrEncoderFinished is returned when recording into a finished encoder.
	ErrEncoderFinished = errors.New("render: command encoder already finished")

	// ErrPassOpen is returned by Finish while a render pass is still open.
	ErrPassOpen = errors.New("render: render pass not ended")

	// ErrBufferNotLocked is returned when bridging a pixel buffer that the
	// producer has already released.
	ErrBufferNotLocked = errors.New("render: pixel buffer not locked")

	// ErrDeviceDestroyed is returned by a device after Destroy.
	ErrDeviceDestroyed = errors.New("render: device destroyed")
)
