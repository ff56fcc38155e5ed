package gateway

import "github.com/limosnd/Marketplace-go-grahpql/pkg/graphql"

const carFields = `
	id
	title
	description
	brand
	model
	year
	price
	mileage
	color
	fuelType
	transmission
	status
	images
	seller { id name email phone }
	location { city state country lat lng }
	features
	createdAt
	updatedAt
`

var (
	listCarsDoc = graphql.MustParse(`
query GetCars($filter: CarFilterInput, $page: Int, $limit: Int) {
	cars(filter: $filter, page: $page, limit: $limit) {
		cars {` + carFields + `}
		total
		page
		limit
		totalPages
	}
}`)

	getCarDoc = graphql.MustParse(`
query GetCar($id: ID!) {
	car(id: $id) {` + carFields + `}
}`)

	searchCarsDoc = graphql.MustParse(`
query SearchCars($query: String!, $page: Int, $limit: Int) {
	searchCars(query: $query, page: $page, limit: $limit) {
		cars {` + carFields + `}
		total
		page
		limit
		totalPages
	}
}`)

	createCarDoc = graphql.MustParse(`
mutation CreateCar($input: CarInput!) {
	createCar(input: $input) {` + carFields + `}
}`)

	updateCarDoc = graphql.MustParse(`
mutation UpdateCar($input: UpdateCarInput!) {
	updateCar(input: $input) {` + carFields + `}
}`)

	deleteCarDoc = graphql.MustParse(`
mutation DeleteCar($id: ID!) {
	deleteCar(id: $id)
}`)

	healthDoc = graphql.MustParse(`query Health { health }`)
)
