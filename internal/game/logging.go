package game

import "log"

// Logging uses a plain log.Printf-with-emoji-prefix convention rather than
// a structured logging library. Bruh is a distinct "internal invariant
// violation, continue" severity kept visible in log scraping without a new
// import.

func Info(msg string)  { log.Printf("ℹ️  %s", msg) }
func Warn(msg string)  { log.Printf("⚠️  %s", msg) }
func Err(msg string)   { log.Printf("🛑 %s", msg) }
func Bruh(msg string)  { log.Printf("🫠 BRUH: %s", msg) }
