package geo

// PakistanAirports lists the major airports with decoded METAR coverage.
// OPIS sits best for M1/M2 motorway coverage, hence the wider radius.
// Slice order is the nearest-neighbor tie-break order.
func PakistanAirports() []Airport {
	return []Airport{
		{ICAO: "OPPS", Name: "Peshawar", Lat: 33.9939, Lon: 71.5147, RadiusKm: 30},
		{ICAO: "OPIS", Name: "Islamabad", Lat: 33.5605, Lon: 72.8495, RadiusKm: 40},
		{ICAO: "OPFA", Name: "Faisalabad", Lat: 31.3650, Lon: 72.9950, RadiusKm: 30},
		{ICAO: "OPST", Name: "Sialkot", Lat: 32.5356, Lon: 74.3639, RadiusKm: 30},
		{ICAO: "OPLA", Name: "Lahore", Lat: 31.5216, Lon: 74.4039, RadiusKm: 30},
		{ICAO: "OPKC", Name: "Karachi", Lat: 24.9065, Lon: 67.1608, RadiusKm: 40},
		{ICAO: "OPMT", Name: "Multan", Lat: 30.2033, Lon: 71.4192, RadiusKm: 30},
	}
}

// TollPlazas lists every pre-fetched toll plaza point on the M1 and M2
// motorways. Waypoint ids double as cache keys for batch queries.
func TollPlazas() []Waypoint {
	return []Waypoint{
		// M2 motorway (Islamabad to Lahore).
		{ID: "m2_01", Name: "ISB Toll Plaza", Lat: 33.58080, Lon: 72.87590},
		{ID: "m2_02", Name: "Thalian", Lat: 33.535637, Lon: 72.901509},
		{ID: "m2_03", Name: "Capital Smart City", Lat: 33.455312, Lon: 72.836096},
		{ID: "m2_04", Name: "Chakri", Lat: 33.30822, Lon: 72.78097},
		{ID: "m2_05", Name: "Neelah Dullah", Lat: 33.16597, Lon: 72.65091},
		{ID: "m2_06", Name: "Balkasar", Lat: 32.93740, Lon: 72.68220},
		{ID: "m2_07", Name: "Kallar Kahar", Lat: 32.77400, Lon: 72.71890},
		{ID: "m2_08", Name: "Lillah", Lat: 32.57670, Lon: 72.79930},
		{ID: "m2_09", Name: "Bhera", Lat: 32.46050, Lon: 72.87490},
		{ID: "m2_10", Name: "Salam", Lat: 32.31410, Lon: 73.01990},
		{ID: "m2_11", Name: "Kot Momin", Lat: 32.19940, Lon: 73.03220},
		{ID: "m2_12", Name: "Sial Morr/Makhdoom", Lat: 31.97300, Lon: 73.10800},
		{ID: "m2_13", Name: "Pindi Bhattian", Lat: 31.93165, Lon: 73.28644},
		{ID: "m2_14", Name: "Kot Sarwar", Lat: 31.91450, Lon: 73.49960},
		{ID: "m2_15", Name: "Khangah Dogran", Lat: 31.87418, Lon: 73.66956},
		{ID: "m2_16", Name: "Hiran Minar", Lat: 31.76670, Lon: 73.95070},
		{ID: "m2_17", Name: "Sheikhupura", Lat: 31.747390, Lon: 74.007271},
		{ID: "m2_18", Name: "Kot Pindi Daas", Lat: 31.69770, Lon: 74.16670},
		{ID: "m2_19", Name: "Faizpur", Lat: 31.592222, Lon: 74.218446},
		{ID: "m2_20", Name: "Ravi Toll Plaza", Lat: 31.55840, Lon: 74.24170},
		// M1 motorway (Islamabad to Peshawar).
		{ID: "m1_01", Name: "Islamabad Peshawar Motorway Toll Plaza", Lat: 33.5998126034548, Lon: 72.86421022885995},
		{ID: "m1_02", Name: "Fatehjhang Toll Plaza", Lat: 33.63812718485647, Lon: 72.83764766533295},
		{ID: "m1_03", Name: "Sangjani Toll Plaza", Lat: 33.65451991934462, Lon: 72.82525440515146},
		{ID: "m1_04", Name: "Brahma Jang Bahtar Toll Plaza", Lat: 33.74394427383943, Lon: 72.70463465828914},
		{ID: "m1_05", Name: "Jallo Burhan Toll Plaza", Lat: 33.82528847591289, Lon: 72.62760261329203},
		{ID: "m1_06", Name: "Ghazi Toll Plaza", Lat: 33.886715, Lon: 72.551022},
		{ID: "m1_07", Name: "Chach Toll Plaza", Lat: 33.92863069167004, Lon: 72.50919507271355},
		{ID: "m1_08", Name: "Swabi Toll Plaza", Lat: 34.04260906367794, Lon: 72.40883011741614},
		{ID: "m1_09", Name: "Kernel Sher Khan Toll Plaza", Lat: 34.06706378926631, Lon: 72.21231899345337},
		{ID: "m1_10", Name: "Rashakai Toll Plaza", Lat: 34.10693024496253, Lon: 72.02389497754581},
		{ID: "m1_11", Name: "Charsadda Toll Plaza", Lat: 34.11952276757881, Lon: 71.79021563518248},
		{ID: "m1_12", Name: "Peshawar Toll Plaza", Lat: 34.02699031773744, Lon: 71.65019267618838},
	}
}
