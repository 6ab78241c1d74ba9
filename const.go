// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.12
//

package gopvt

const (
	PI   = 3.1415926535897932  // Pi
	C    = 2.99792458e8        // Speed of light [m/s]
	Re   = 6378137.0           // Earth's radius [m]
	Fe   = 1.0 / 298.257223563 // Earth's flattening
	LS   = 18                  // Leap seconds
	OMGe = 7.2921151467e-5     // Earth rotation angular velocity [rad/s]
)

// Reference ellipsoids selectable by index.
// 0: International 1924, 1: International 1967, 2: WGS-72, 3: GRS-80, 4: WGS-84
const WGS84 = 4

var (
	ellipsoidA = [5]float64{6378388, 6378160, 6378135, 6378137, 6378137}
	ellipsoidF = [5]float64{1.0 / 297, 1.0 / 298.247, 1.0 / 298.26, 1.0 / 298.257222101, 1.0 / 298.257223563}
)
