package repository

// Repositories agrupa los repositorios atados a una misma transacción (unidad atómica).
type Repositories struct {
	Ledger         StockLedgerRepository
	Balances       InventoryBalanceRepository
	Products       ProductRepository
	Warehouses     WarehouseRepository
	PurchaseOrders PurchaseOrderRepository
	Sales          SaleRepository
	Cash           CashTransactionRepository
}
