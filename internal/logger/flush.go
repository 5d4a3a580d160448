package logger

import "time"

const sentryFlushTimeout = 2 * time.Second
