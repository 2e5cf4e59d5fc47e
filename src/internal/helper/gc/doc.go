// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc provides reusable byte buffer pooling to reduce garbage collection overhead.
// It abstracts the [bytebufferpool] library so the certificate loader and the
// structured logger can share one pool without importing it directly.
//
// [bytebufferpool]: https://github.com/valyala/bytebufferpool
package gc
