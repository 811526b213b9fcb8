package domain

import (
	"net/mail"
	"strings"
)

// SplitAddresses 把地址串拆成地址列表。
//
// 分隔符 ';' 与 ',' 等价，地址两侧的空白会被去掉，空项被丢弃。
func SplitAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}
	addresses = strings.ReplaceAll(addresses, " ", "")
	addresses = strings.ReplaceAll(addresses, ",", ";")

	out := make([]string, 0, 4)
	for _, addr := range strings.Split(addresses, ";") {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// JoinAddresses 把地址列表规整为分号分隔的存储形式。
func JoinAddresses(addresses []string) string {
	return strings.Join(addresses, ";")
}

// ValidAddress 做基础的地址语法校验。
func ValidAddress(address string) bool {
	if address == "" {
		return false
	}
	_, err := mail.ParseAddress(address)
	return err == nil
}

// ValidAddresses 判断列表里的地址是否全部合法且至少有一个。
func ValidAddresses(addresses []string) bool {
	if len(addresses) == 0 {
		return false
	}
	for _, addr := range addresses {
		if !ValidAddress(addr) {
			return false
		}
	}
	return true
}
