package tripbased

// TripDescriptor identifies one concrete trip instance. Frequency-based
// trips are expanded at index-build time so that each (tripId, startTime)
// pair becomes its own descriptor; HasStartTime distinguishes a
// frequency-expanded descriptor from a plain scheduled trip so that the
// zero value of StartTime never collides with "no start time" — this keeps
// TripDescriptor a plain comparable struct usable as a map key, which a
// pointer-typed "optional startTime" would not be.
type TripDescriptor struct {
	TripId       string
	HasStartTime bool
	StartTime    int // seconds of day of the first departure, only meaningful if HasStartTime
	RouteId      string
}

// StopTime is one row of a trip's schedule. StopSequence is trip-local and
// strictly increasing; Arrival/Departure are seconds from service-day
// noon-minus-12h (the GTFS convention) and may exceed 86400 for trips that
// cross midnight. PickupType/DropoffType follow GTFS stop_times.txt
// (0 = regular) and participate in pattern assignment (§4.1).
type StopTime struct {
	StopSequence     int
	Stop             StopId
	ArrivalSeconds   int
	DepartureSeconds int
	PickupType       int
	DropoffType      int
}

// TripMetadata carries the trip attributes the polymorphic trip filter and
// block-aware transfer counting need, beyond what TripDescriptor itself
// holds.
type TripMetadata struct {
	RouteId   string
	RouteType int
	AgencyId  string
	BlockId   string
}

// ServiceCalendar is owned by each trip via its GTFS serviceId and answers
// whether that service runs on a given service day.
type ServiceCalendar interface {
	ActiveOn(day ServiceDay) bool
}

// ServiceCalendarFunc adapts a plain function to ServiceCalendar.
type ServiceCalendarFunc func(ServiceDay) bool

func (f ServiceCalendarFunc) ActiveOn(day ServiceDay) bool { return f(day) }

// AlwaysActive is a ServiceCalendar that runs every day, useful for tests
// and for feeds with no meaningful calendar restriction.
var AlwaysActive ServiceCalendar = ServiceCalendarFunc(func(ServiceDay) bool { return true })

// TripRef names one trip within one feed, the unit TransferBuilder iterates
// over.
type TripRef struct {
	Feed FeedId
	Trip TripDescriptor
}

