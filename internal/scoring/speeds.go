package scoring

// Motor velocities in RPM.
const (
	IntakeSpeed        = 550
	IntakeReverseSpeed = -300

	StorageTopSpeed   = 60
	StorageLeftSpeed  = -275
	StorageRightSpeed = -350
)

// MotorSpeeds is one row of the routing table. Intake is always non-zero for
// a scoring route. DrawsFromStorage marks routes that pull a ball out of the
// internal store.
type MotorSpeeds struct {
	Intake           int
	Top              int
	Left             int
	Right            int
	DrawsFromStorage bool
}

type routeKey struct {
	mode      ScoringMode
	direction ExecutionDirection
	storage   bool
}

// routeTable is the single source of scoring behavior. TOP GOAL front ignores
// storage routing because the ball is already at the front top position.
var routeTable = map[routeKey]MotorSpeeds{
	{ModeCollection, DirectionFront, false}: {Intake: IntakeSpeed, Top: 400, Left: -550, Right: -350},
	{ModeCollection, DirectionFront, true}:  {Intake: IntakeSpeed, Top: 200, Left: -550, Right: -350, DrawsFromStorage: true},
	{ModeMidGoal, DirectionFront, false}:    {Intake: IntakeSpeed, Left: 300},
	{ModeMidGoal, DirectionFront, true}:     {Intake: IntakeSpeed, Top: -400, Left: 300, DrawsFromStorage: true},
	{ModeLowGoal, DirectionFront, false}:    {Intake: IntakeReverseSpeed},
	{ModeLowGoal, DirectionFront, true}:     {Intake: IntakeReverseSpeed, Top: -400, Left: 300, DrawsFromStorage: true},
	{ModeTopGoal, DirectionFront, false}:    {Intake: IntakeSpeed, Top: 400, Left: -350, Right: -350},
	{ModeTopGoal, DirectionFront, true}:     {Intake: IntakeSpeed, Top: 400, Left: -350, Right: -350},

	{ModeCollection, DirectionBack, false}: {Intake: IntakeSpeed, Left: 150, Right: -350},
	{ModeCollection, DirectionBack, true}:  {Intake: IntakeSpeed, Top: -200, Left: -150, Right: -350, DrawsFromStorage: true},
	{ModeMidGoal, DirectionBack, false}:    {Intake: IntakeSpeed, Left: -550, Right: 500},
	{ModeMidGoal, DirectionBack, true}:     {Intake: IntakeSpeed, Top: -200, Left: -550, Right: 500, DrawsFromStorage: true},
	{ModeLowGoal, DirectionBack, false}:    {Intake: IntakeReverseSpeed},
	{ModeLowGoal, DirectionBack, true}:     {Intake: IntakeReverseSpeed, Top: -200, Left: -150, DrawsFromStorage: true},
	{ModeTopGoal, DirectionBack, false}:    {Intake: IntakeSpeed, Top: -400, Left: -350, Right: -350},
	{ModeTopGoal, DirectionBack, true}:     {Intake: IntakeSpeed, Top: -200, Left: -350, Right: -550, DrawsFromStorage: true},
}

// Route looks up the motor speeds for a mode, a scoring direction and the
// storage-routing flag. The second result is false for combinations that do
// not score (NONE mode, STORAGE or NONE direction).
func Route(mode ScoringMode, direction ExecutionDirection, storageRouting bool) (MotorSpeeds, bool) {
	s, ok := routeTable[routeKey{mode, direction, storageRouting}]
	return s, ok
}

// StorageRoute returns the fixed speeds used while routing balls into storage.
func StorageRoute() MotorSpeeds {
	return MotorSpeeds{Intake: IntakeSpeed, Top: StorageTopSpeed, Left: StorageLeftSpeed, Right: StorageRightSpeed}
}
