package models

// MenuItem is a purchasable dish. Price is in whole NT dollars.
type MenuItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Icon  string `json:"icon"`
}

// Catalog is the fixed menu. Names are unique.
type Catalog []MenuItem

var defaultMenu = Catalog{
	{Name: "滷肉飯", Price: 35, Icon: "🍚"},
	{Name: "雞肉飯", Price: 40, Icon: "🍗"},
	{Name: "蚵仔煎", Price: 65, Icon: "🍳"},
	{Name: "大腸麵線", Price: 50, Icon: "🍜"},
	{Name: "珍珠奶茶", Price: 45, Icon: "🥤"},
	{Name: "鹽酥雞", Price: 60, Icon: "🍖"},
	{Name: "甜不辣", Price: 40, Icon: "🍢"},
	{Name: "肉圓", Price: 45, Icon: "🥟"},
}

// quickAddCount is how many leading menu entries get a one-tap button.
const quickAddCount = 4

// DefaultCatalog returns a copy of the restaurant menu.
func DefaultCatalog() Catalog {
	menu := make(Catalog, len(defaultMenu))
	copy(menu, defaultMenu)
	return menu
}

// Find looks an item up by name.
func (c Catalog) Find(name string) (MenuItem, bool) {
	for _, item := range c {
		if item.Name == name {
			return item, true
		}
	}
	return MenuItem{}, false
}

// QuickAdd returns the items shown as quick-add buttons.
func (c Catalog) QuickAdd() Catalog {
	if len(c) <= quickAddCount {
		return c
	}
	return c[:quickAddCount]
}
