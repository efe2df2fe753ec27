// Package storage provides the embedded BadgerDB key/value store backing
// the bot's durable state. Values are stored as JSON.
package storage
