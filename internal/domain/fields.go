package domain

// FieldCode names one telemetry channel of the inverter.
type FieldCode string

// Known field codes.
const (
	FieldKDY  FieldCode = "KDY"
	FieldKMT  FieldCode = "KMT"
	FieldKYR  FieldCode = "KYR"
	FieldKT0  FieldCode = "KT0"
	FieldPDC  FieldCode = "PDC"
	FieldPD01 FieldCode = "PD01"
	FieldPD02 FieldCode = "PD02"
	FieldUDC  FieldCode = "UDC"
	FieldUD01 FieldCode = "UD01"
	FieldUD02 FieldCode = "UD02"
	FieldIDC  FieldCode = "IDC"
	FieldID01 FieldCode = "ID01"
	FieldID02 FieldCode = "ID02"
	FieldPAC  FieldCode = "PAC"
	FieldUL1  FieldCode = "UL1"
	FieldUL2  FieldCode = "UL2"
	FieldUL3  FieldCode = "UL3"
	FieldIL1  FieldCode = "IL1"
	FieldIL2  FieldCode = "IL2"
	FieldIL3  FieldCode = "IL3"
	FieldCAC  FieldCode = "CAC"
	FieldKHR  FieldCode = "KHR"
	FieldTKK  FieldCode = "TKK"
	FieldSAL  FieldCode = "SAL"
	FieldSYS  FieldCode = "SYS"
)

// FieldDefinition pairs a field code with its human-readable label.
type FieldDefinition struct {
	Code  FieldCode
	Label string
}

// InverterFields is the ordered set of fields requested on every poll.
var InverterFields = []FieldDefinition{
	{FieldKDY, "Energy_Day (Wh)"},
	{FieldKMT, "Energy_Month (kWh)"},
	{FieldKYR, "Energy_Year (kWh)"},
	{FieldKT0, "Energy_Total (kWh)"},
	{FieldPDC, "DC_Power (W)"},
	{FieldPD01, "DC_Power_String_1 (W)"},
	{FieldPD02, "DC_Power_String_2 (W)"},
	{FieldUD01, "DC_Voltage_String_1 (V)"},
	{FieldUD02, "DC_Voltage_String_2 (V)"},
	{FieldIDC, "DC_Current (A)"},
	{FieldID01, "DC_Current_String_1 (A)"},
	{FieldID02, "DC_Current_String_2 (A)"},
	{FieldPAC, "AC_Power (W)"},
	{FieldUL1, "AC_Voltage_Phase_1 (V)"},
	{FieldUL2, "AC_Voltage_Phase_2 (V)"},
	{FieldUL3, "AC_Voltage_Phase_3 (V)"},
	{FieldIL1, "AC_Current_Phase_1 (A)"},
	{FieldIL2, "AC_Current_Phase_2 (A)"},
	{FieldIL3, "AC_Current_Phase_3 (A)"},
	{FieldCAC, "Startups"},
	{FieldKHR, "poweronhours"},
	{FieldTKK, "inverter_operating_temp (C)"},
	{FieldSAL, "Alarm_Codes"},
	{FieldSYS, "status_Code"},
}

// FieldCodes returns the codes of the given definitions in order.
func FieldCodes(defs []FieldDefinition) []FieldCode {
	codes := make([]FieldCode, len(defs))
	for i, d := range defs {
		codes[i] = d.Code
	}
	return codes
}
