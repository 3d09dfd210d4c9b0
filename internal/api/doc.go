// Package api provides clients for the two remote sources pricesync reads.
//
// Catalog source (KRX listed companies, HTML table, CP949 encoded):
//   - http://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13
//
// Price source (daily prices, JSON array, newest first, paged):
//   - https://m.stock.naver.com/api/stock/{code}/price?pageSize=N&page=P
//
// Amounts arrive as strings with grouping separators ("78,500") and are
// normalized here into exact integers before they reach the store.
package api
