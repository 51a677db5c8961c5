package models

// Collection names. Each is an independent set of records mirrored between
// the local store and the remote collection service.
const (
	CollectionUsers         = "users"
	CollectionEvents        = "events"
	CollectionAnnouncements = "announcements"
	CollectionGallery       = "gallery"
	CollectionRequests      = "requests"
	CollectionMessages      = "messages"
	CollectionNotifications = "notifications"
)

// Collections lists every mirrored collection.
var Collections = []string{
	CollectionUsers,
	CollectionEvents,
	CollectionAnnouncements,
	CollectionGallery,
	CollectionRequests,
	CollectionMessages,
	CollectionNotifications,
}

// Order describes how a collection is sorted. Order is defined by the data
// field, not by arrival order.
type Order struct {
	Field      string
	Descending bool
}

// OrderOf returns the configured sort order for a collection. Collections
// without a time field keep whatever order the snapshot delivered.
func OrderOf(collection string) (Order, bool) {
	o, ok := collectionOrder[collection]
	return o, ok
}

var collectionOrder = map[string]Order{
	CollectionEvents:        {Field: "date", Descending: true},
	CollectionAnnouncements: {Field: "date", Descending: true},
	CollectionRequests:      {Field: "timestamp", Descending: true},
	CollectionMessages:      {Field: "timestamp", Descending: false},
	CollectionNotifications: {Field: "timestamp", Descending: true},
}

// Known reports whether name is one of the mirrored collections.
func Known(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
