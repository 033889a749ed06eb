package models

// Row is the persisted shape shared by every history log
type Row struct {
	ID         uint64 `json:"id"`
	ExternalID string `json:"external_id"`
	Timestamp  int64  `json:"timestamp"`
	Duration   int64  `json:"duration"`
	Title      string `json:"title"`
}

// Record is implemented by the pointer type of every stored history variant.
// FromRow materializes the variant from a row and ToRow exports it back.
type Record[T any] interface {
	*T
	FromRow(Row)
	ToRow() Row
	GetTimestamp() int64
}

// Video is a youtube play
type Video struct {
	ID        uint64 `boltholdKey:"ID" gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   string `gorm:"column:vid;not null" json:"vid"`
	Timestamp int64  `gorm:"index;not null" json:"timestamp"`
	Duration  int64  `gorm:"not null" json:"duration"`
	Title     string `gorm:"not null" json:"title"`
}

func (Video) TableName() string { return "videos" }

func (v *Video) FromRow(r Row) {
	v.ID = r.ID
	v.VideoID = r.ExternalID
	v.Timestamp = r.Timestamp
	v.Duration = r.Duration
	v.Title = r.Title
}

func (v *Video) ToRow() Row {
	return Row{ID: v.ID, ExternalID: v.VideoID, Timestamp: v.Timestamp, Duration: v.Duration, Title: v.Title}
}

func (v *Video) GetTimestamp() int64 { return v.Timestamp }

// Track is a local file play
type Track struct {
	ID        uint64 `boltholdKey:"ID" gorm:"primaryKey;autoIncrement" json:"id"`
	Path      string `gorm:"not null" json:"path"`
	Timestamp int64  `gorm:"index;not null" json:"timestamp"`
	Duration  int64  `gorm:"not null" json:"duration"`
	Title     string `gorm:"not null" json:"title"`
}

func (Track) TableName() string { return "tracks" }

func (t *Track) FromRow(r Row) {
	t.ID = r.ID
	t.Path = r.ExternalID
	t.Timestamp = r.Timestamp
	t.Duration = r.Duration
	t.Title = r.Title
}

func (t *Track) ToRow() Row {
	return Row{ID: t.ID, ExternalID: t.Path, Timestamp: t.Timestamp, Duration: t.Duration, Title: t.Title}
}

func (t *Track) GetTimestamp() int64 { return t.Timestamp }

// Entry is a record tagged with its kind, used where logs are merged
type Entry struct {
	Kind MediaKind `json:"kind"`
	Row
}
