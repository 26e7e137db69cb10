package eg

// DecayCurve is a normalized exponential decay from full scale (65535)
// towards zero in 256 steps. Read forward it shapes decay and release
// ramps; inverted (65535 - v) it shapes the attack.
var DecayCurve = [256]uint16{
	65535, 63715, 61945, 60224, 58552, 56925, 55344, 53807,
	52312, 50859, 49447, 48073, 46738, 45440, 44178, 42951,
	41758, 40598, 39470, 38374, 37308, 36272, 35264, 34285,
	33332, 32406, 31506, 30631, 29780, 28953, 28149, 27367,
	26607, 25868, 25149, 24451, 23772, 23112, 22470, 21845,
	21239, 20649, 20075, 19518, 18975, 18448, 17936, 17438,
	16953, 16483, 16025, 15580, 15147, 14726, 14317, 13919,
	13533, 13157, 12792, 12436, 12091, 11755, 11428, 11111,
	10802, 10502, 10211, 9927, 9651, 9383, 9123, 8869,
	8623, 8383, 8150, 7924, 7704, 7490, 7282, 7080,
	6883, 6692, 6506, 6325, 6150, 5979, 5813, 5651,
	5494, 5342, 5193, 5049, 4909, 4772, 4640, 4511,
	4386, 4264, 4145, 4030, 3918, 3810, 3704, 3601,
	3501, 3404, 3309, 3217, 3128, 3041, 2956, 2874,
	2795, 2717, 2641, 2568, 2497, 2427, 2360, 2294,
	2231, 2169, 2108, 2050, 1993, 1938, 1884, 1831,
	1781, 1731, 1683, 1636, 1591, 1547, 1504, 1462,
	1421, 1382, 1343, 1306, 1270, 1235, 1200, 1167,
	1135, 1103, 1072, 1043, 1014, 986, 958, 932,
	906, 880, 856, 832, 809, 787, 765, 744,
	723, 703, 683, 664, 646, 628, 611, 594,
	577, 561, 545, 530, 516, 501, 487, 474,
	461, 448, 435, 423, 412, 400, 389, 378,
	368, 357, 348, 338, 329, 319, 311, 302,
	294, 285, 277, 270, 262, 255, 248, 241,
	234, 228, 221, 215, 209, 204, 198, 192,
	187, 182, 177, 172, 167, 162, 158, 154,
	149, 145, 141, 137, 133, 130, 126, 123,
	119, 116, 113, 110, 106, 104, 101, 98,
	95, 92, 90, 87, 85, 83, 80, 78,
	76, 74, 72, 70, 68, 66, 64, 62,
	61, 59, 57, 56, 54, 53, 51, 50,
}

// CurveValue returns the curve at a 16 bit phase. The high byte selects
// the table segment and the low byte interpolates linearly towards the
// next entry (or zero past the last one).
func CurveValue(phase uint16) uint16 {
	idx := phase >> 8
	frac := uint32(phase & 0xff)

	prev := uint32(DecayCurve[idx])
	var next uint32
	if idx < 255 {
		next = uint32(DecayCurve[idx+1])
	}
	return uint16(next + (prev-next)*(255-frac)/256)
}

// Granule returns the per tick phase increment for a 0-1023 time
// parameter. Larger parameters give smaller increments, i.e. slower
// ramps. The result is never 0.
func Granule(param uint16) uint16 {
	if param > MaxParam {
		param = MaxParam
	}
	g := DecayCurve[param/4] / 256
	if g == 0 {
		g = 1
	}
	return g
}
