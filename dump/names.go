package dump

// Display names for the low partner indexes, for operator convenience in
// exported tables and shell listings. The table field itself remains the
// authoritative name; this is only a guide to which record is which.
var d3DisplayNames = map[int]string{
	0:  "V-MON",
	1:  "VEEDRAMON",
	2:  "AGUMON",
	3:  "GABUMON",
	4:  "PATAMON",
	5:  "TAILMON",
	6:  "WORMMON",
	7:  "HAWKMON",
	8:  "ARMADIMON",
	9:  "GUILMON",
	10: "TERRIERMON",
	11: "RENAMON",
}

var digiviceDisplayNames = map[int]string{
	0:  "AGUMON",
	1:  "GABUMON",
	2:  "PIYOMON",
	3:  "TENTOMON",
	4:  "PALMON",
	5:  "GOMAMON",
	6:  "PATAMON",
	7:  "TAILMON",
	8:  "GREYMON",
	9:  "GARURUMON",
	10: "BIRDRAMON",
	11: "KABUTERIMON",
}

func DisplayName(dt DeviceType, index int) string {
	switch dt {
	case DT_D3:
		return d3DisplayNames[index]
	case DT_DIGIVICE:
		return digiviceDisplayNames[index]
	}
	return ""
}
