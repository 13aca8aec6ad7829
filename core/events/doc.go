// Package events defines the device events emitted on the event bus.
//
// Available event types:
//   - DispenseEvent: a dispense workflow completed
//   - DuplicateEvent: a redelivered command id was discarded
//   - AlarmEvent: the scheduled alarm fired
//   - ScheduleEvent: a schedule configuration was accepted
//   - PublishEvent: a shadow publish finished
//   - ConnectionEvent: the shadow session changed state
//
// Events are observational: the tick loop publishes them without waiting and
// drops them when no observer keeps up.
package events
