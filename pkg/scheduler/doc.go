// Package scheduler runs the bot's recurring jobs, currently the morning
// weather broadcast.
package scheduler
