package utils

// DefaultChunkSize размер чанка, которым режет файлы клиент (1 МиБ)
const DefaultChunkSize int64 = 1 << 20

// ChunkCount число чанков для файла размером size.
// Пустой файл все равно занимает один (пустой) чанк.
func ChunkCount(size, chunkSize int64) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if size <= 0 {
		return 1
	}
	return int((size + chunkSize - 1) / chunkSize)
}

// ChunkRange границы [start, end) чанка index
func ChunkRange(index int, size, chunkSize int64) (start, end int64) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	start = int64(index) * chunkSize
	if start > size {
		start = size
	}
	end = start + chunkSize
	if end > size {
		end = size
	}
	return start, end
}
