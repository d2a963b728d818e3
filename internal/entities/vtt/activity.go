package vtt

// ActivityType is the kind of action a weapon grants
type ActivityType string

// Activity kinds
const (
	ActivityAttack  ActivityType = "attack"
	ActivitySave    ActivityType = "save"
	ActivityUtility ActivityType = "utility"
)

// Stable activity ids, one per kind
const (
	AttackActivityID  = "dnd5eactivity000"
	SaveActivityID    = "dnd5eactivity100"
	UtilityActivityID = "dnd5eactivity300"
)

// Attack types
const (
	AttackMelee  = "melee"
	AttackRanged = "ranged"
)

// Activity is one synthesized action on a weapon
type Activity struct {
	ID          string              `json:"_id"`
	Type        ActivityType        `json:"type"`
	Name        string              `json:"name"`
	Sort        int                 `json:"sort"`
	Activation  ActivityActivation  `json:"activation"`
	Consumption Consumption         `json:"consumption"`
	Description ActivityDescription `json:"description"`
	Duration    ActivityDuration    `json:"duration"`
	Range       ActivityRange       `json:"range"`
	Target      ActivityTarget      `json:"target"`
	Uses        ActivityUses        `json:"uses"`
	Attack      *AttackDetails      `json:"attack,omitempty"`
	Damage      *ActivityDamage     `json:"damage,omitempty"`
	Save        *SaveDetails        `json:"save,omitempty"`
	Roll        *UtilityRoll        `json:"roll,omitempty"`
}

// ActivityActivation is the action economy cost of an activity
type ActivityActivation struct {
	Type      string `json:"type"`
	Value     int    `json:"value"`
	Condition string `json:"condition"`
	Override  bool   `json:"override"`
}

// Consumption of item charges by an activity
type Consumption struct {
	Targets   []ConsumptionTarget `json:"targets"`
	SpellSlot bool                `json:"spellSlot"`
}

// ConsumptionTarget is one resource consumed
type ConsumptionTarget struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Target string `json:"target"`
}

// ActivityDescription is flavor text for chat
type ActivityDescription struct {
	ChatFlavor string `json:"chatFlavor"`
}

// ActivityDuration of an activity
type ActivityDuration struct {
	Units         string `json:"units"`
	Concentration bool   `json:"concentration"`
	Override      bool   `json:"override"`
}

// ActivityRange of an activity
type ActivityRange struct {
	Value    *float64 `json:"value"`
	Units    string   `json:"units"`
	Override bool     `json:"override"`
}

// ActivityTarget of an activity
type ActivityTarget struct {
	Template TargetTemplate `json:"template"`
	Affects  TargetAffects  `json:"affects"`
	Prompt   bool           `json:"prompt"`
	Override bool           `json:"override"`
}

// TargetTemplate is an area template
type TargetTemplate struct {
	Count      string `json:"count"`
	Contiguous bool   `json:"contiguous"`
	Type       string `json:"type"`
	Size       string `json:"size"`
	Units      string `json:"units"`
}

// TargetAffects describes who is affected
type TargetAffects struct {
	Count  string `json:"count"`
	Type   string `json:"type"`
	Choice bool   `json:"choice"`
}

// ActivityUses are charges owned by the activity itself
type ActivityUses struct {
	Spent    int        `json:"spent"`
	Max      string     `json:"max"`
	Recovery []Recovery `json:"recovery"`
}

// AttackDetails for attack activities
type AttackDetails struct {
	Ability  string         `json:"ability"`
	Bonus    string         `json:"bonus"`
	Critical CriticalRange  `json:"critical"`
	Flat     bool           `json:"flat"`
	Type     AttackTypeInfo `json:"type"`
}

// CriticalRange override
type CriticalRange struct {
	Threshold *int `json:"threshold"`
}

// AttackTypeInfo is melee or ranged
type AttackTypeInfo struct {
	Value          string `json:"value"`
	Classification string `json:"classification"`
}

// ActivityDamage lists damage rolled by an activity
type ActivityDamage struct {
	Critical    CriticalDamage `json:"critical"`
	IncludeBase bool           `json:"includeBase"`
	OnSave      string         `json:"onSave,omitempty"`
	Parts       []DamagePart   `json:"parts"`
}

// CriticalDamage extra on a critical hit
type CriticalDamage struct {
	Bonus string `json:"bonus"`
}

// DamagePart is one parsed damage roll. Number and Denomination are nil when
// the formula has no dice term, in which case Custom carries the formula.
type DamagePart struct {
	Number       *int          `json:"number"`
	Denomination *int          `json:"denomination"`
	Bonus        string        `json:"bonus"`
	Types        []string      `json:"types"`
	Custom       CustomFormula `json:"custom"`
	Scaling      DamageScaling `json:"scaling"`
}

// CustomFormula is a raw formula override
type CustomFormula struct {
	Enabled bool   `json:"enabled"`
	Formula string `json:"formula"`
}

// DamageScaling for upcasting
type DamageScaling struct {
	Mode    string `json:"mode"`
	Number  *int   `json:"number"`
	Formula string `json:"formula"`
}

// SaveDetails for save activities
type SaveDetails struct {
	Ability []string `json:"ability"`
	DC      SaveDC   `json:"dc"`
}

// SaveDC is either calculated or a flat formula
type SaveDC struct {
	Calculation string `json:"calculation"`
	Formula     string `json:"formula"`
}

// UtilityRoll is an optional roll attached to a utility activity
type UtilityRoll struct {
	Formula string `json:"formula"`
	Name    string `json:"name"`
	Prompt  bool   `json:"prompt"`
	Visible bool   `json:"visible"`
}
