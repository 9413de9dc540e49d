package coasters

// Field names used by the catalog files.
const (
	FieldID             = "id"
	FieldExternalID     = "rcdbId"
	FieldName           = "name"
	FieldParkName       = "parkName"
	FieldCity           = "city"
	FieldCountry        = "country"
	FieldStatus         = "status"
	FieldOpened         = "opened"
	FieldManufacturer   = "manufacturer"
	FieldModel          = "model"
	FieldType           = "type"
	FieldDesign         = "design"
	FieldHeight         = "height"
	FieldDrop           = "drop"
	FieldAngle          = "angle"
	FieldVerticalAngle  = "verticalAngle"
	FieldSpeed          = "speed"
	FieldLength         = "length"
	FieldInversions     = "inversions"
	FieldElements       = "elements"
	FieldDuration       = "duration"
	FieldLatitude       = "latitude"
	FieldLongitude      = "longitude"
	FieldIsSplitTrack   = "isSplitTrack"
	FieldSplitGroup     = "splitGroup"
	FieldTrackName      = "trackName"
	FieldSplitSiblings  = "splitSiblings"
	FieldFiltered       = "filtered"
	FieldStatusState    = "state"
)

// SplitFields are the split-protection fields stamped on every track of a
// multi-track attraction.
var SplitFields = []string{
	FieldIsSplitTrack,
	FieldSplitGroup,
	FieldTrackName,
	FieldSplitSiblings,
}
