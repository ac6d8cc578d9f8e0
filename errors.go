package tripbased

import "errors"

// Error taxonomy. UnknownTrip/UnknownStop/UnknownFeed and
// InconsistentSchedule surface from ScheduleIndex and are fatal to a
// TransferBuilder run. ServiceDayNotPrepared is not itself returned as an
// error anywhere — the router treats a day with no prepared TransferMap as
// "skip transfer expansion" and proceeds, per spec. Aborted is returned from
// a query whose cancellation flag fired between rounds. IncompatibleServiceDays
// is returned when a query's access stops resolve to different calendar
// dates in their own feed's time zone and no explicit mixed-day policy was
// given.
var (
	ErrUnknownTrip             = errors.New("tripbased: unknown trip")
	ErrUnknownStop             = errors.New("tripbased: unknown stop")
	ErrUnknownFeed             = errors.New("tripbased: unknown feed")
	ErrInconsistentSchedule    = errors.New("tripbased: inconsistent stop times")
	ErrServiceDayNotPrepared   = errors.New("tripbased: service day not prepared")
	ErrAborted                 = errors.New("tripbased: query aborted")
	ErrIncompatibleServiceDays = errors.New("tripbased: access stops span incompatible service days")
)
