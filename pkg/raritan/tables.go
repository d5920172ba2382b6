package raritan

// Static lookup tables for the Raritan JSON-RPC object model. The bulk
// interface reports sensor types and units as integer codes; these tables
// translate them into the names used to build exported metric names.
// Codes missing from a table resolve to the defaults below instead of
// failing, since newer firmware may grow the enums.

const (
	// DefaultMetric is used until sensor metadata has been resolved.
	DefaultMetric = "unspecified"
	// DefaultUnit marks sensors without a meaningful unit of measurement.
	DefaultUnit = "none"
)

// Interface tags that support the numeric 'getReading' bulk method.
var numericInterfaces = map[string]struct{}{
	"sensors.NumericSensor:4.0.3":                      {},
	"pdumodel.TypeBResidualCurrentNumericSensor:1.0.2": {},
}

// Interface tags that support the discrete 'getState' bulk method.
// State sensors expose no metadata on the bulk interface.
var stateInterfaces = map[string]struct{}{
	"sensors.StateSensor:4.0.5":                      {},
	"pdumodel.ResidualCurrentStateSensor:2.0.2":      {},
	"pdumodel.OverCurrentProtectorStateSensor:1.0.3": {},
}

// IsNumericInterface reports whether the interface tag maps to a numeric
// reading method.
func IsNumericInterface(iface string) bool {
	_, ok := numericInterfaces[iface]
	return ok
}

// IsStateInterface reports whether the interface tag maps to a discrete
// state reading method.
func IsStateInterface(iface string) bool {
	_, ok := stateInterfaces[iface]
	return ok
}

// sensorTypes maps the metadata 'type.type' code to a metric name.
var sensorTypes = map[int]string{
	0:  "unspecified",
	1:  "voltage",
	2:  "current",
	3:  "unbalancedCurrent",
	4:  "power",
	5:  "powerFactor",
	6:  "energy",
	7:  "frequency",
	8:  "temperature",
	9:  "humidity",
	10: "airFlow",
	11: "airPressure",
	12: "activePower",
	13: "apparentPower",
	14: "apparentEnergy",
	15: "displacementPowerFactor",
	16: "residualCurrent",
	17: "rcmState",
	18: "otherSensor",
	19: "none",
	20: "smokeDetection",
	21: "binary",
	22: "contactClosure",
	23: "fanSpeed",
	24: "vibration",
	25: "waterDetection",
	26: "accumulatingNumeric",
	27: "unbalancedVoltage",
	28: "unbalancedLineLineCurrent",
	29: "unbalancedLineLineVoltage",
	30: "activeEnergy",
	31: "reactivePower",
	32: "crestFactor",
}

// sensorUnits maps the metadata 'type.unit' code to a unit name.
var sensorUnits = map[int]string{
	0:  "none",
	1:  "volt",
	2:  "ampere",
	3:  "watt",
	4:  "voltamp",
	5:  "wattHour",
	6:  "voltampHour",
	7:  "degreeC",
	8:  "degreeF",
	9:  "percent",
	10: "meterPerSec",
	11: "pascal",
	12: "psi",
	13: "rpm",
	14: "meter",
	15: "hour",
	16: "minute",
	17: "second",
	18: "hertz",
	19: "degree",
	20: "gram",
	21: "ohm",
	22: "liter",
	23: "literPerHour",
}

// metricDescriptions maps an exported metric name to its help text.
// Metric names not listed here default to "none".
var metricDescriptions = map[string]string{
	"raritan_sensors_voltage_in_volt":               "RMS voltage between this connector's lines",
	"raritan_sensors_current_in_ampere":             "RMS current drawn through this connector",
	"raritan_sensors_active_power_in_watt":          "Active (real) power drawn through this connector",
	"raritan_sensors_apparent_power_in_voltamp":     "Apparent power drawn through this connector",
	"raritan_sensors_power_factor":                  "Ratio of active to apparent power on this connector",
	"raritan_sensors_active_energy_in_watt_hour":    "Cumulative active energy drawn through this connector",
	"raritan_sensors_line_frequency_in_hertz":       "AC line frequency measured at this connector",
	"raritan_sensors_unbalanced_current_in_percent": "Current imbalance between the phases of this inlet",
	"raritan_sensors_residual_current_in_ampere":    "Residual (leakage) current measured at this connector",
	"raritan_sensors_temperature_in_degree_c":       "Temperature measured by a peripheral sensor",
	"raritan_sensors_humidity_in_percent":           "Relative humidity measured by a peripheral sensor",
}

func sensorTypeName(code int) string {
	if name, ok := sensorTypes[code]; ok {
		return name
	}
	return DefaultMetric
}

func sensorUnitName(code int) string {
	if name, ok := sensorUnits[code]; ok {
		return name
	}
	return DefaultUnit
}

// MetricDescription returns the help text for an exported metric name.
func MetricDescription(longname string) string {
	if desc, ok := metricDescriptions[longname]; ok {
		return desc
	}
	return "none"
}
