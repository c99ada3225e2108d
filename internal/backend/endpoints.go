package backend

import "github.com/sipertani/sipertani/internal/farm"

// REST paths relative to the API base URL.
const (
	PathLogin         = "/user/login"
	PathRegister      = "/user/register"
	PathCurrentUser   = "/user/current"
	PathManagers      = "/user/manajer"
	PathBuyers        = "/user/pembeli"
	PathUsers         = "/user"
	PathPlants        = "/tanaman"
	PathPlots         = "/lahan"
	PathHarvests      = "/hasil_panen"
	PathReadings      = "/monitoring"
	PathPurchases     = "/pembelian"
	PathMgrPlants     = "/manager/tanaman"
	PathMgrPlantings  = "/manager/tanaman-lahan"
	PathMgrHarvests   = "/manager/hasil-panen"
	PathMgrReadings   = "/manager/monitoring"
	PathMgrPurchases  = "/manager/pembelian"
	PathBuyerRoot     = "/pembeli"
	PathBuyerCatalog  = "/pembeli/hasil-panen"
	PathBuyerPurchase = "/pembeli/pembelian"
)

// Item returns the path of a single record under collection.
func Item(collection string, id farm.ID) string {
	return collection + "/" + id.String()
}
