// Package events defines the event types published on the facility bus.
package events
