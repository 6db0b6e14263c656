package types

// Category is the closed set of policy categories the service recognizes.
// Upstream category codes are mapped onto this set by the taxonomy
// normalizer; unrecognized codes fall back to CategoryWelfare.
type Category string

const (
	CategoryJob       Category = "JOB"
	CategoryHousing   Category = "HOUSING"
	CategoryLoan      Category = "LOAN"
	CategoryEducation Category = "EDUCATION"
	CategoryStartup   Category = "STARTUP"
	CategoryWelfare   Category = "WELFARE"
)

// Categories lists every valid Category, used for request validation.
var Categories = []Category{
	CategoryJob,
	CategoryHousing,
	CategoryLoan,
	CategoryEducation,
	CategoryStartup,
	CategoryWelfare,
}

// Region is the closed set of national subdivisions plus the RegionAll
// sentinel for nationwide policies (and the fallback for localities the
// normalizer cannot resolve).
type Region string

const (
	RegionSeoul     Region = "SEOUL"
	RegionBusan     Region = "BUSAN"
	RegionDaegu     Region = "DAEGU"
	RegionIncheon   Region = "INCHEON"
	RegionGwangju   Region = "GWANGJU"
	RegionDaejeon   Region = "DAEJEON"
	RegionUlsan     Region = "ULSAN"
	RegionSejong    Region = "SEJONG"
	RegionGyeonggi  Region = "GYEONGGI"
	RegionGangwon   Region = "GANGWON"
	RegionChungbuk  Region = "CHUNGBUK"
	RegionChungnam  Region = "CHUNGNAM"
	RegionJeonbuk   Region = "JEONBUK"
	RegionJeonnam   Region = "JEONNAM"
	RegionGyeongbuk Region = "GYEONGBUK"
	RegionGyeongnam Region = "GYEONGNAM"
	RegionJeju      Region = "JEJU"
	RegionAll       Region = "ALL"
)

// Regions lists every valid Region, used for request validation.
var Regions = []Region{
	RegionSeoul, RegionBusan, RegionDaegu, RegionIncheon, RegionGwangju,
	RegionDaejeon, RegionUlsan, RegionSejong, RegionGyeonggi, RegionGangwon,
	RegionChungbuk, RegionChungnam, RegionJeonbuk, RegionJeonnam,
	RegionGyeongbuk, RegionGyeongnam, RegionJeju, RegionAll,
}

// PolicyStatus is the time-dependent lifecycle state of a policy.
// It is derived on every read from the application interval and the
// current time; it is never stored as a column.
type PolicyStatus string

const (
	StatusOpen        PolicyStatus = "OPEN"
	StatusUpcoming    PolicyStatus = "UPCOMING"
	StatusClosingSoon PolicyStatus = "CLOSING_SOON"
	StatusClosed      PolicyStatus = "CLOSED"
)

// HealthState is the tagged state of the upstream health monitor.
type HealthState string

const (
	// HealthStateHealthy means the last probe succeeded (counter == 0).
	HealthStateHealthy HealthState = "healthy"
	// HealthStateDegraded means probes are failing but the alert threshold
	// has not been reached yet.
	HealthStateDegraded HealthState = "degraded"
	// HealthStateAlerted means the consecutive-failure threshold has been
	// reached and the incident alert has fired.
	HealthStateAlerted HealthState = "alerted"
)

// DispatchStatus enumerates the states recorded in the notification log.
const (
	DispatchStatusSent   = "sent"
	DispatchStatusFailed = "failed"
)
