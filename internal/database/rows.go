package database

// Row is one normalized record destined for a single table. Values must
// be ordered to match the column list registered for that table.
type Row interface {
	Values() []any
}

// ActivityRow is a flat activity record for the activities table.
type ActivityRow struct {
	ID               int64
	Name             string
	Date             string // YYYY-MM-DD
	Month            string // zero-padded numeric string, "01".."12"
	DayOfWeek        string // full weekday name
	StartTime        string // HH:MM:SS
	EndTime          string // HH:MM:SS
	SportType        string
	Indoor           int64 // boolean as integer
	Distance         float64
	Duration         float64
	ElevationGain    float64
	GearID           string
	AverageHeartrate *float64
	AverageSpeed     float64
	AverageCadence   *float64
	AverageTemp      *float64
	AverageWatts     *float64
	Intensity        *int64
	LatLng           string
}

func (r ActivityRow) Values() []any {
	return []any{
		r.ID, r.Name, r.Date, r.Month, r.DayOfWeek, r.StartTime, r.EndTime,
		r.SportType, r.Indoor, r.Distance, r.Duration, r.ElevationGain,
		r.GearID, r.AverageHeartrate, r.AverageSpeed, r.AverageCadence,
		r.AverageTemp, r.AverageWatts, r.Intensity, r.LatLng,
	}
}

// GearRow is a flat gear record for the gear table.
type GearRow struct {
	GearID    string
	Name      string
	Distance  float64
	BrandName string
	ModelName string
	Retired   int64
	Weight    float64
}

func (r GearRow) Values() []any {
	return []any{r.GearID, r.Name, r.Distance, r.BrandName, r.ModelName, r.Retired, r.Weight}
}

// SplitsRow bundles all laps of one activity as a single serialized field.
type SplitsRow struct {
	ID             int64
	SportType      string
	SplitsMetric   string
	Laps           string
	AvailableZones string
}

func (r SplitsRow) Values() []any {
	return []any{r.ID, r.SportType, r.SplitsMetric, r.Laps, r.AvailableZones}
}

// ZoneRow is one heart-rate or power band of one activity.
type ZoneRow struct {
	ID         int64
	ZoneType   string
	MinValue   int64
	MaxValue   int64
	TimeInZone float64
}

func (r ZoneRow) Values() []any {
	return []any{r.ID, r.ZoneType, r.MinValue, r.MaxValue, r.TimeInZone}
}

// BestEffortRow is one named effort segment of one activity.
type BestEffortRow struct {
	ID       int64
	Date     string
	Name     string
	Distance float64
	Time     int64
	PRRank   *int64
}

func (r BestEffortRow) Values() []any {
	return []any{r.ID, r.Date, r.Name, r.Distance, r.Time, r.PRRank}
}

// StreamsRow holds the serialized time series of one activity. Absent
// series carry a single-element placeholder array, never null.
type StreamsRow struct {
	ID        int64
	Time      string
	Distance  string
	LatLng    string
	Altitude  string
	Speed     string
	Heartrate string
	Cadence   string
	Watts     string
}

func (r StreamsRow) Values() []any {
	return []any{r.ID, r.Time, r.Distance, r.LatLng, r.Altitude, r.Speed, r.Heartrate, r.Cadence, r.Watts}
}

// CacheRow marks a detail-processing attempt for an activity id.
type CacheRow struct {
	ID int64
}

func (r CacheRow) Values() []any {
	return []any{r.ID}
}

// HealthRow is one calendar day of wellness metrics from the health
// export. Metric pointers are nil when the export has no sample that day.
type HealthRow struct {
	ID                         int64
	Date                       string
	AppleExerciseTime          *float64
	AppleMoveTime              *float64
	Caffeine                   *float64
	CardioRecovery             *float64
	FlightsClimbed             *int64
	HeadphoneAudioExposure     *float64
	HeartRateVariability       *float64
	MindfulMinutes             *float64
	PhysicalEffort             *float64
	RespiratoryRate            *float64
	RestingHeartRate           *float64
	RunningGroundContactTime   *float64
	RunningPower               *float64
	RunningSpeed               *float64
	RunningStrideLength        *float64
	RunningVerticalOscillation *float64
	SleepAnalysisAsleep        *float64
	SleepAnalysisInBed         *float64
	SleepAnalysisCore          *float64
	SleepAnalysisDeep          *float64
	SleepAnalysisREM           *float64
	SleepAnalysisAwake         *float64
	StepCount                  *int64
	TimeInDaylight             *float64
	VO2Max                     *float64
	WalkingRunningDistance     *float64
	Month                      string
	DayOfWeek                  string
}

func (r HealthRow) Values() []any {
	return []any{
		r.ID, r.Date, r.AppleExerciseTime, r.AppleMoveTime, r.Caffeine,
		r.CardioRecovery, r.FlightsClimbed, r.HeadphoneAudioExposure,
		r.HeartRateVariability, r.MindfulMinutes, r.PhysicalEffort,
		r.RespiratoryRate, r.RestingHeartRate, r.RunningGroundContactTime,
		r.RunningPower, r.RunningSpeed, r.RunningStrideLength,
		r.RunningVerticalOscillation, r.SleepAnalysisAsleep,
		r.SleepAnalysisInBed, r.SleepAnalysisCore, r.SleepAnalysisDeep,
		r.SleepAnalysisREM, r.SleepAnalysisAwake, r.StepCount,
		r.TimeInDaylight, r.VO2Max, r.WalkingRunningDistance,
		r.Month, r.DayOfWeek,
	}
}
