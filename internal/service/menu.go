package service

import "fmt"

// Menu 侧边栏菜单项
type Menu string

const (
	MenuAllOrders     Menu = "All Orders"
	MenuPendingOrders Menu = "Pending Orders"
	MenuVisualData    Menu = "Visual Data"
	MenuInventory     Menu = "Inventory"
)

const DefaultMenu = MenuAllOrders

var Menus = []Menu{MenuAllOrders, MenuPendingOrders, MenuVisualData, MenuInventory}

func ParseMenu(s string) (Menu, error) {
	for _, m := range Menus {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown menu option %q", s)
}

// Icon 菜单图标
func (m Menu) Icon() string {
	switch m {
	case MenuAllOrders:
		return "📦"
	case MenuPendingOrders:
		return "⏳"
	case MenuVisualData:
		return "📊"
	default:
		return "📋"
	}
}

// ShowsOrders 是否渲染订单表格
func (m Menu) ShowsOrders() bool {
	return m == MenuAllOrders || m == MenuPendingOrders
}
