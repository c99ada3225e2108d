package farm

// Record is implemented by every entity that has a primary key.
type Record interface {
	Key() ID
}

// Role names as issued by the API.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manajer"
	RoleBuyer   Role = "pembeli"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBuyer:
		return true
	}
	return false
}

// User is an account. Password is only ever sent, never read back.
type User struct {
	ID       ID     `json:"id_user,omitempty"`
	Username string `json:"username"`
	Name     string `json:"nama"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

func (u User) Key() ID { return u.ID }

// Plant is a crop variety (tanaman).
type Plant struct {
	ID          ID     `json:"id_tanaman,omitempty"`
	Name        string `json:"nama_tanaman"`
	Kind        string `json:"jenis"`
	Quantity    Number `json:"jumlah_tanam"`
	PlantedDate Date   `json:"tanggal_tanam"`
}

func (p Plant) Key() ID { return p.ID }

// Plot is a piece of land (lahan) supervised by a manager.
type Plot struct {
	ID           ID     `json:"id_lahan,omitempty"`
	Name         string `json:"nama_lahan"`
	Area         Number `json:"luas"`
	Location     string `json:"lokasi"`
	SupervisorID ID     `json:"id_pengawas"`
}

func (p Plot) Key() ID { return p.ID }

// PlotPlanting joins a plant to a plot (tanaman_lahan).
type PlotPlanting struct {
	ID          ID             `json:"id_tl,omitempty"`
	PlotID      ID             `json:"id_lahan"`
	PlantID     ID             `json:"id_tanaman"`
	PlantedDate Date           `json:"tanggal_tanam"`
	Status      PlantingStatus `json:"status"`
}

func (p PlotPlanting) Key() ID { return p.ID }

// Harvest is a harvested lot offered for sale (hasil_panen).
type Harvest struct {
	ID           ID            `json:"id_hasil,omitempty"`
	PlantID      ID            `json:"id_tanaman"`
	PlotID       ID            `json:"id_lahan"`
	SupervisorID ID            `json:"id_pengawas"`
	HarvestDate  Date          `json:"tanggal_panen"`
	Quantity     Number        `json:"kuantitas"`
	Grade        Grade         `json:"kualitas"`
	UnitPrice    Number        `json:"harga_satuan"`
	Status       HarvestStatus `json:"status"`
}

func (h Harvest) Key() ID { return h.ID }

// Reading is an append-only sensor reading for a plot.
type Reading struct {
	ID          ID     `json:"id_monitor,omitempty"`
	PlotID      ID     `json:"id_lahan"`
	Temperature Number `json:"suhu"`
	Humidity    Number `json:"kelembapan"`
	RecordedAt  Stamp  `json:"waktu"`
}

func (r Reading) Key() ID { return r.ID }

// Purchase is a buyer's order against a harvest (pembelian).
type Purchase struct {
	ID         ID             `json:"id_pembelian,omitempty"`
	BuyerID    ID             `json:"id_pembeli"`
	SellerID   ID             `json:"id_penjual"`
	HarvestID  ID             `json:"id_hasil"`
	PlantID    ID             `json:"id_tanaman"`
	Quantity   Number         `json:"kuantitas"`
	TotalPrice Number         `json:"total_harga"`
	Date       Date           `json:"tanggal"`
	Status     PurchaseStatus `json:"status"`
}

func (p Purchase) Key() ID { return p.ID }
