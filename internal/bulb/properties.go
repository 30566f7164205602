package bulb

// Raw attribute names as they appear on the wire. Status deltas use the
// camel-cased forms; the seeded attribute list mixes both styles, which
// is faithfully preserved here.
const (
	attrBrightness        = "brightness"
	attrConsumptionTime   = "consumptionTime"
	attrDeviceRSSI        = "deviceRssi"
	attrIdentifyNo        = "identifyNO"
	attrIP                = "ip"
	attrName              = "name"
	attrOnline            = "online"
	attrProductCode       = "product_code"
	attrSaveFlag          = "save_flag"
	attrStartTime         = "start_time"
	attrSupportAttributes = "support_attributes"
	attrSwitch            = "switch"
	attrTimeZone          = "time_zone"
	attrTypeCode          = "type_code"
	attrVersion           = "version"
)

// Normalised property names exposed to observers.
const (
	PropBrightness        = "brightness"
	PropConsumptionTime   = "consumption_time"
	PropIdentifyNo        = "identify_no"
	PropIP                = "ip"
	PropName              = "name"
	PropOnline            = "online"
	PropProductCode       = "product_code"
	PropRSSI              = "rssi"
	PropSaveFlag          = "save_flag"
	PropStartTime         = "start_time"
	PropSupportAttributes = "support_attributes"
	PropSwitch            = "switch"
	PropTimeZone          = "time_zone"
	PropTypeCode          = "type_code"
	PropVersion           = "version"
)

// attributeToProperty translates wire attribute names to normalised
// property names. Names absent from the table pass through unchanged.
var attributeToProperty = map[string]string{
	"consumptionTime":   PropConsumptionTime,
	"deviceRssi":        PropRSSI,
	"identifyNO":        PropIdentifyNo,
	"productCode":       PropProductCode,
	"saveFlag":          PropSaveFlag,
	"startTime":         PropStartTime,
	"supportAttributes": PropSupportAttributes,
	"timeZone":          PropTimeZone,
	"typeCode":          PropTypeCode,
}

// propertyName returns the normalised property name for a wire attribute.
func propertyName(attr string) string {
	if prop, ok := attributeToProperty[attr]; ok {
		return prop
	}
	return attr
}

// propertyValue returns the current decoded value for a normalised
// property name, and whether the bulb exposes that property at all.
//
// This is a fixed enumeration rather than reflection: observers are only
// ever notified for properties listed here.
func (b *Bulb) propertyValue(property string) (any, bool) {
	switch property {
	case PropBrightness:
		return b.Brightness(), true
	case PropConsumptionTime:
		return b.ConsumptionTime(), true
	case PropIdentifyNo:
		return b.IdentifyNo(), true
	case PropIP:
		return b.IP(), true
	case PropName:
		return b.Name(), true
	case PropOnline:
		return b.Online(), true
	case PropProductCode:
		return b.ProductCode(), true
	case PropRSSI:
		return b.RSSI(), true
	case PropSaveFlag:
		return b.SaveFlag(), true
	case PropStartTime:
		return b.StartTime(), true
	case PropSupportAttributes:
		return b.SupportAttributes(), true
	case PropSwitch:
		return b.Switch(), true
	case PropTimeZone:
		return b.TimeZone(), true
	case PropTypeCode:
		return b.TypeCode(), true
	case PropVersion:
		return b.Version(), true
	default:
		return nil, false
	}
}
