package model

// LevelDistribution is the share of customers per level, in percent.
type LevelDistribution struct {
	Regular float64 `json:"regularPercentage" msgpack:"regular"`
	VIP     float64 `json:"vipPercentage" msgpack:"vip"`
	Premium float64 `json:"premiumPercentage" msgpack:"premium"`
}

// CustomerStats is the dashboard aggregate over every customer.
type CustomerStats struct {
	TotalCustomers    int               `json:"totalCustomers" msgpack:"total_customers"`
	RegularCustomers  int               `json:"regularCustomers" msgpack:"regular_customers"`
	VIPCustomers      int               `json:"vipCustomers" msgpack:"vip_customers"`
	PremiumCustomers  int               `json:"premiumCustomers" msgpack:"premium_customers"`
	ActiveCustomers   int               `json:"activeCustomers" msgpack:"active_customers"`
	InactiveCustomers int               `json:"inactiveCustomers" msgpack:"inactive_customers"`
	TotalDevices      int               `json:"totalDevices" msgpack:"total_devices"`
	RentalDevices     int               `json:"rentalDevices" msgpack:"rental_devices"`
	PurchasedDevices  int               `json:"purchasedDevices" msgpack:"purchased_devices"`
	TotalRevenue      float64           `json:"totalRevenue" msgpack:"total_revenue"`
	MonthlyRevenue    float64           `json:"monthlyRevenue" msgpack:"monthly_revenue"`
	TotalOrders       int               `json:"totalOrders" msgpack:"total_orders"`
	NewThisMonth      int               `json:"newThisMonth" msgpack:"new_this_month"`
	TopRegion         string            `json:"topRegion,omitempty" msgpack:"top_region"`
	LevelDistribution LevelDistribution `json:"levelDistribution" msgpack:"level_distribution"`
	StatisticsDate    string            `json:"statisticsDate" msgpack:"statistics_date"`
}

// FilterOptions are the distinct values the customer list can be filtered by.
type FilterOptions struct {
	Levels     []string `json:"levels" msgpack:"levels"`
	Statuses   []string `json:"statuses" msgpack:"statuses"`
	Regions    []string `json:"regions" msgpack:"regions"`
	Industries []string `json:"industries" msgpack:"industries"`
}

// Address of a customer.
type Address struct {
	Province string `json:"province" msgpack:"province"`
	City     string `json:"city" msgpack:"city"`
	Detail   string `json:"detail" msgpack:"detail"`
}

// DeviceCount summarizes the devices a customer holds.
type DeviceCount struct {
	Total     int `json:"total" msgpack:"total"`
	Purchased int `json:"purchased" msgpack:"purchased"`
	Rental    int `json:"rental" msgpack:"rental"`
}

// CustomerDetail is the full profile of one customer.
type CustomerDetail struct {
	ID            int64       `json:"id" msgpack:"id"`
	Name          string      `json:"customerName" msgpack:"name"`
	Level         string      `json:"customerLevel" msgpack:"level"`
	Status        string      `json:"customerStatus" msgpack:"status"`
	ContactPerson string      `json:"contactPerson,omitempty" msgpack:"contact_person"`
	Phone         string      `json:"phone,omitempty" msgpack:"phone"`
	Email         string      `json:"email,omitempty" msgpack:"email"`
	Tags          []string    `json:"tags,omitempty" msgpack:"tags"`
	Address       *Address    `json:"address,omitempty" msgpack:"address"`
	Region        string      `json:"region,omitempty" msgpack:"region"`
	Industry      string      `json:"industry,omitempty" msgpack:"industry"`
	TotalSpent    float64     `json:"totalSpent" msgpack:"total_spent"`
	DeviceCount   DeviceCount `json:"deviceCount" msgpack:"device_count"`
	RegisteredAt  string      `json:"registeredAt" msgpack:"registered_at"`
	LastActiveAt  string      `json:"lastActiveAt,omitempty" msgpack:"last_active_at"`
}

// CustomerDevice is a device purchased or rented by a customer.
type CustomerDevice struct {
	ID              string `json:"id" msgpack:"id"`
	SerialNumber    string `json:"serialNumber" msgpack:"serial_number"`
	Model           string `json:"model" msgpack:"model"`
	Type            string `json:"type" msgpack:"type"`
	Status          string `json:"status" msgpack:"status"`
	FirmwareVersion string `json:"firmwareVersion,omitempty" msgpack:"firmware_version"`
	HealthScore     int    `json:"healthScore" msgpack:"health_score"`
	ActivatedAt     string `json:"activatedAt,omitempty" msgpack:"activated_at"`
	LastOnlineAt    string `json:"lastOnlineAt,omitempty" msgpack:"last_online_at"`
}

// CustomerOrder is a sales or rental order placed by a customer.
type CustomerOrder struct {
	ID          string  `json:"id" msgpack:"id"`
	OrderNumber string  `json:"orderNumber" msgpack:"order_number"`
	Type        string  `json:"type" msgpack:"type"`
	ProductName string  `json:"productName" msgpack:"product_name"`
	Quantity    int     `json:"quantity" msgpack:"quantity"`
	Amount      float64 `json:"amount" msgpack:"amount"`
	Status      string  `json:"status" msgpack:"status"`
	RentalDays  int     `json:"rentalDays,omitempty" msgpack:"rental_days"`
	CreatedAt   string  `json:"createdAt" msgpack:"created_at"`
}

// ServiceRecord is a maintenance, upgrade or support interaction with a customer.
type ServiceRecord struct {
	ID           string  `json:"id" msgpack:"id"`
	Type         string  `json:"type" msgpack:"type"`
	Subject      string  `json:"subject" msgpack:"subject"`
	DeviceID     string  `json:"deviceId,omitempty" msgpack:"device_id"`
	ServiceStaff string  `json:"serviceStaff,omitempty" msgpack:"service_staff"`
	Cost         float64 `json:"cost" msgpack:"cost"`
	Status       string  `json:"status" msgpack:"status"`
	CreatedAt    string  `json:"createdAt" msgpack:"created_at"`
}
