// Package address 地址值对象
// 会员与配送共用,没有独立的标识,按值比较
package address

// Address 地址(值对象,嵌入到member和delivery表中)
type Address struct {
	City    string `json:"city"`
	Street  string `json:"street"`
	Zipcode string `json:"zipcode"`
}

// New 创建地址
func New(city, street, zipcode string) Address {
	return Address{City: city, Street: street, Zipcode: zipcode}
}

// IsZero 是否为空地址
func (a Address) IsZero() bool {
	return a == Address{}
}
